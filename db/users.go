package db

import (
	"fmt"
)

func (db *DB) CreateUser(user *User) error {
	if _, err := ParseRole(string(user.Role)); err != nil {
		return err
	}
	return db.Transaction(func(tx *DB) error {
		if err := tx.Create(user).Error; err != nil {
			return wrapWriteErr("create user", err)
		}
		return nil
	})
}

func (db *DB) GetUser(id int) (*User, error) {
	var user User
	if err := db.Where("id=?", id).First(&user).Error; err != nil {
		return nil, wrapReadErr(fmt.Sprintf("get user %d", id), err)
	}
	return &user, nil
}

func (db *DB) GetUserByEmail(email string) (*User, error) {
	var user User
	if err := db.Where("email=?", email).First(&user).Error; err != nil {
		return nil, wrapReadErr("get user by email", err)
	}
	return &user, nil
}

func (db *DB) ListUsers(p Page) ([]*User, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	var users []*User
	err := db.
		Order("id ASC").
		Limit(p.Limit).
		Offset(p.Offset()).
		Find(&users).
		Error
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}

func (db *DB) CountUsers() (int, error) {
	var count int
	if err := db.Model(&User{}).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("count users: %w", err)
	}
	return count, nil
}

// UpdateUser writes the set fields of the patch, and updated_at, to the user with
// the given id
func (db *DB) UpdateUser(id int, patch UserPatch) error {
	if patch.Role != nil {
		if _, err := ParseRole(string(*patch.Role)); err != nil {
			return err
		}
	}
	return db.applyPatch(User{}.TableName(), id, patch)
}

func (db *DB) DeleteUser(id int) error {
	return db.deleteByID(&User{}, id)
}

func (db *DB) deleteByID(model interface{ TableName() string }, id int) error {
	res := db.Where("id=?", id).Delete(model)
	if err := res.Error; err != nil {
		return wrapWriteErr(fmt.Sprintf("delete %s %d", model.TableName(), id), err)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("delete %s %d: %w", model.TableName(), id, ErrNotFound)
	}
	return nil
}
