package db

import (
	"errors"
	"fmt"
	"strconv"
)

const DefaultPageLimit = 10

var ErrInvalidPage = errors.New("invalid page")

// Page is a pagination window. it is converted to an offset/limit pair for
// retrieval ordered by ascending id
type Page struct {
	Number int
	Limit  int
}

// ParsePage reads a window from request parameters, where empty values fall back
// to the first page of DefaultPageLimit rows. there is no upper bound on limit
func ParsePage(page, limit string) (Page, error) {
	p := Page{Number: 1, Limit: DefaultPageLimit}
	var err error
	if page != "" {
		if p.Number, err = strconv.Atoi(page); err != nil {
			return Page{}, fmt.Errorf("page %q: %w", page, ErrInvalidPage)
		}
	}
	if limit != "" {
		if p.Limit, err = strconv.Atoi(limit); err != nil {
			return Page{}, fmt.Errorf("limit %q: %w", limit, ErrInvalidPage)
		}
	}
	if err := p.Validate(); err != nil {
		return Page{}, err
	}
	return p, nil
}

func (p Page) Validate() error {
	if p.Number < 1 {
		return fmt.Errorf("page must be at least 1: %w", ErrInvalidPage)
	}
	if p.Limit < 1 {
		return fmt.Errorf("limit must be at least 1: %w", ErrInvalidPage)
	}
	return nil
}

func (p Page) Offset() int {
	return (p.Number - 1) * p.Limit
}

func (p Page) Prev() int {
	if p.Number <= 1 {
		return 0
	}
	return p.Number - 1
}

// Next returns the following page number, or 0 if total rows are exhausted
func (p Page) Next(total int) int {
	if p.Number*p.Limit >= total {
		return 0
	}
	return p.Number + 1
}
