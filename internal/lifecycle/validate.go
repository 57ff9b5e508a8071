package lifecycle

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/qri-io/jsonschema"
)

// Submission constraints mirror the public form: a syntactically plausible
// email address and a question between 10 and 500 characters.
const submissionSchemaJSON = `{
	"type": "object",
	"required": ["email", "question"],
	"properties": {
		"email": {
			"type": "string",
			"pattern": "^[^@\\s]+@[^@\\s]+\\.[^@\\s]+$",
			"maxLength": 254
		},
		"question": {
			"type": "string",
			"minLength": 10,
			"maxLength": 500
		}
	}
}`

var submissionSchema = func() *jsonschema.Schema {
	rs := &jsonschema.Schema{}
	if err := json.Unmarshal([]byte(submissionSchemaJSON), rs); err != nil {
		panic(fmt.Sprintf("parse submission schema: %v", err))
	}
	return rs
}()

// ValidateSubmission checks the submit-question input before any store write
// is attempted. Returns a VALIDATION error with field-level detail on failure.
func ValidateSubmission(ctx context.Context, email, question string) error {
	payload, err := json.Marshal(map[string]string{"email": email, "question": question})
	if err != nil {
		return newError(ErrorValidation, "encode submission", err)
	}

	keyErrs, err := submissionSchema.ValidateBytes(ctx, payload)
	if err != nil {
		return newError(ErrorValidation, "validate submission", err)
	}
	if len(keyErrs) > 0 {
		msgs := make([]string, 0, len(keyErrs))
		for _, ke := range keyErrs {
			msgs = append(msgs, fmt.Sprintf("%s: %s", ke.PropertyPath, ke.Message))
		}
		return newError(ErrorValidation, strings.Join(msgs, "; "), nil)
	}

	return nil
}
