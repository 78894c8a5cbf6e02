package ctrladmin

import (
	"fmt"
	"net/http"

	"go.senan.xyz/ams/db"
)

func (c *Controller) ServeUsers(r *http.Request) *Response {
	page, err := db.ParsePage(r.URL.Query().Get("page"), r.URL.Query().Get("limit"))
	if err != nil {
		return &Response{code: http.StatusBadRequest, err: err.Error()}
	}
	users, err := c.DB.ListUsers(page)
	if err != nil {
		return errorResponse(err, "/admin/home")
	}
	total, err := c.DB.CountUsers()
	if err != nil {
		return errorResponse(err, "/admin/home")
	}
	return &Response{
		template: "users.tmpl",
		data: &templateData{
			Users: users,
			Pager: newPager("/admin/users", page, total),
		},
	}
}

func (c *Controller) ServeUser(r *http.Request) *Response {
	id, err := pathID(r)
	if err != nil {
		return &Response{code: http.StatusBadRequest, err: err.Error()}
	}
	user, err := c.DB.GetUser(id)
	if err != nil {
		return errorResponse(err, "/admin/users")
	}
	return &Response{
		template: "user.tmpl",
		data:     &templateData{SelectedUser: user},
	}
}

func (c *Controller) ServeCreateUser(r *http.Request) *Response {
	return &Response{
		template: "user_form.tmpl",
		data:     &templateData{Roles: db.Roles},
	}
}

func (c *Controller) ServeCreateUserDo(r *http.Request) *Response {
	user, err := userFromForm(r)
	if err != nil {
		return &Response{redirect: "/admin/create_user", flashW: []string{err.Error()}}
	}
	if err := c.DB.CreateUser(user); err != nil {
		return errorResponse(err, "/admin/create_user")
	}
	return &Response{
		redirect: "/admin/users",
		flashN:   []string{fmt.Sprintf("created user %q", user.Email)},
	}
}

func (c *Controller) ServeUpdateUser(r *http.Request) *Response {
	id, err := formID(r)
	if err != nil {
		return &Response{code: http.StatusBadRequest, err: err.Error()}
	}
	user, err := c.DB.GetUser(id)
	if err != nil {
		return errorResponse(err, "/admin/users")
	}
	return &Response{
		template: "user_form.tmpl",
		data:     &templateData{SelectedUser: user, Roles: db.Roles},
	}
}

func (c *Controller) ServeUpdateUserDo(r *http.Request) *Response {
	id, err := formID(r)
	if err != nil {
		return &Response{code: http.StatusBadRequest, err: err.Error()}
	}
	back := fmt.Sprintf("/admin/update_user?id=%d", id)
	patch, err := userPatchFromForm(r)
	if err != nil {
		return &Response{redirect: back, flashW: []string{err.Error()}}
	}
	if err := c.DB.UpdateUser(id, patch); err != nil {
		return errorResponse(err, back)
	}
	return &Response{
		redirect: fmt.Sprintf("/admin/users/%d", id),
		flashN:   []string{"user updated"},
	}
}

func (c *Controller) ServeDeleteUserDo(r *http.Request) *Response {
	id, err := formID(r)
	if err != nil {
		return &Response{code: http.StatusBadRequest, err: err.Error()}
	}
	if err := c.DB.DeleteUser(id); err != nil {
		return errorResponse(err, "/admin/users")
	}
	return &Response{
		redirect: "/admin/users",
		flashN:   []string{"user deleted"},
	}
}
