package catalog

import (
	"errors"
	"strings"
)

func (s *Service) validate(p Product) error {
	if strings.TrimSpace(p.Name) == "" {
		return errors.New("product name is required")
	}
	if p.SupplierPrice < 0 || p.ClientPrice < 0 {
		return errors.New("product prices must be >= 0")
	}
	if p.Stock < 0 {
		return errors.New("product stock must be >= 0")
	}
	return nil
}
