// Formcheck validates form data against page layouts and a JSON Schema data
// model from the command line.
//
// Usage:
//
//	# Validate data against every page
//	formcheck validate --layouts ./layouts --models ./models --type form --data data.yaml
//
//	# Re-validate whenever a layout, model or data file changes
//	formcheck watch --config formcheck.yaml
//
//	# Shift stored validations after deleting a repeating-group row
//	formcheck remove-row --validations result.json --group G --row 1
package main

func main() {
	Execute()
}
