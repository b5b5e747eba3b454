// Package label fills ZPL label templates with product fields.
//
// Templates reference fields as $NAME or ${NAME}; $$ produces a literal
// dollar sign. Fields builds the substitution context from a product record
// and the configured line widths, and Fill substitutes it. Fill is pure: the
// same template and fields always yield the same markup, and any placeholder
// without a value fails the whole fill with ErrTemplate instead of printing a
// half-filled label.
package label
