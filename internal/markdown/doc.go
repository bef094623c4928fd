// Package markdown renders Markdown text into HTML with goldmark and converts
// markdown-formatted fields of arbitrarily nested documents.
//
// FieldConverter walks a document depth first, collects every leaf whose key
// matches one of the requested field names (at any depth), renders those
// values and merges them back onto a copy of the input:
//
//	conv := markdown.NewFieldConverter(nil)
//	out, err := conv.Convert(ctx, doc, []string{"description", "summary"})
//
// Only mapping nesting adds path segments. Sequences are opaque leaves.
package markdown
