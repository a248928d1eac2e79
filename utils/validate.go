package utils

import (
	"github.com/go-playground/validator/v10"
)

// Validate is the shared validator instance for request structs that need
// checks beyond what gin's binding tags express.
var Validate = validator.New()
