package model

import (
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
)

func (r CreateEntryRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Name, validation.Required, validation.RuneLength(1, MaxNameLength)),
		validation.Field(&r.Message, validation.Required, validation.RuneLength(1, MaxMessageLength)),
		validation.Field(&r.Website, is.URL, validation.Length(0, 300)),
	)
}
