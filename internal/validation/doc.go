// Quill - Article Publishing and Read Analytics Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/quill

// Package validation provides request validation using go-playground/validator v10.
//
// A singleton validator is configured once with:
//   - JSON field names in error output (title, not Title)
//   - personname: letters and spaces only
//   - strongpassword: at least 8 characters from [A-Za-z\d@$!%*?&], including
//     a lower-case letter, an upper-case letter, a digit and one of @$!%*?&
//
// # Error Format
//
// ValidateStruct returns a *RequestValidationError whose Messages() are the
// entries of the Errors array in a 400 "Validation failed" response:
//
//	{
//	  "Success": false,
//	  "Message": "Validation failed",
//	  "Object": null,
//	  "Errors": [
//	    "title : Title cannot exceed 150 characters",
//	    "content : Content must be at least 50 characters"
//	  ]
//	}
//
// Field-specific messages (fieldMessages) take precedence over the generic
// per-tag templates.
//
// # Thread Safety
//
// The singleton validator is initialized once and safe for concurrent use.
package validation
