package config

import (
	"errors"
	"fmt"
	"net/url"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

func getValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		// Report fields by their TOML keys so messages match the config file.
		validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("toml"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
	})
	return validate
}

// Validate checks the configuration for errors.
// Returns a slice of error messages (empty if valid).
func (c *Config) Validate() []string {
	var errs []string

	if err := getValidator().Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return []string{err.Error()}
		}
		for _, fe := range verrs {
			errs = append(errs, describe(fe))
		}
	}

	errs = append(errs, validateService("sonarr", c.Sonarr)...)
	errs = append(errs, validateService("radarr", c.Radarr)...)

	return errs
}

// validateService checks a partially configured service. A section with
// neither url nor api_key is valid: the service is simply not configured.
func validateService(name string, s ServiceConfig) []string {
	var errs []string
	if s.URL == "" && s.APIKey == "" {
		return nil
	}
	if s.URL == "" {
		errs = append(errs, fmt.Sprintf("%s.url: required when %s.api_key is set", name, name))
	} else if _, err := url.Parse(s.URL); err != nil {
		errs = append(errs, fmt.Sprintf("%s.url: %v", name, err))
	}
	if s.APIKey == "" {
		errs = append(errs, fmt.Sprintf("%s.api_key: required when %s.url is set", name, name))
	}
	return errs
}

func describe(fe validator.FieldError) string {
	// Namespace is "Config.matrix.homeserver"; drop the root type name.
	field := fe.Namespace()
	if i := strings.IndexByte(field, '.'); i >= 0 {
		field = field[i+1:]
	}

	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s: required", field)
	case "required_without":
		return fmt.Sprintf("%s: required unless access_token is set", field)
	case "url":
		return fmt.Sprintf("%s: must be a valid URL, got %q", field, fe.Value())
	case "oneof":
		return fmt.Sprintf("%s: must be one of %s; got %q", field, strings.ReplaceAll(fe.Param(), " ", ", "), fe.Value())
	case "startswith":
		return fmt.Sprintf("%s: must start with %q, got %q", field, fe.Param(), fe.Value())
	default:
		return fmt.Sprintf("%s: failed %s validation", field, fe.Tag())
	}
}
