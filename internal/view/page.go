package view

import (
	"pix-storefront/internal/dto"
	"pix-storefront/internal/model"
)

// Page is the data handed to every template.
type Page struct {
	Title    string
	Path     string
	Buyer    *model.User
	Merchant *model.Merchant
	Flash    string
	Error    string
	Errors   dto.FieldErrors
	Form     any
	Data     any
}

func (p *Page) FieldError(field string) string {
	if p.Errors == nil {
		return ""
	}
	return p.Errors[field]
}
