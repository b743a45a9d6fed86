package cmd

import (
	"github.com/inovacc/starcards/internal/model"
	"github.com/spf13/pflag"
)

var _ pflag.Value = (*categoryValue)(nil)

// categoryValue is a pflag.Value accepting only known categories.
type categoryValue struct {
	category model.Category
}

func (v *categoryValue) String() string {
	return string(v.category)
}

func (v *categoryValue) Set(s string) error {
	c, err := model.ParseCategory(s)
	if err != nil {
		return err
	}

	v.category = c

	return nil
}

func (v *categoryValue) Type() string {
	return "category"
}
