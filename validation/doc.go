// Package validation provides input validation for shellkit configuration
// and process requests.
//
// It supports struct tag validation (using go-playground/validator) and
// programmatic validation with error collection. Both report failures as
// INVALID_INPUT AppErrors carrying the offending fields in Details.
//
// # Struct Tag Validation
//
//	type ExecConfig struct {
//	    BaseDir string        `validate:"omitempty,dir"`
//	    Timeout time.Duration `validate:"gte=0"`
//	}
//	err := validation.Validate(cfg)
//
// # Programmatic Validation
//
//	v := validation.New().
//	    Required("name", cfg.Name).
//	    OneOf("environment", cfg.Environment, environments)
//	if appErr := v.Validate(); appErr != nil { ... }
package validation
