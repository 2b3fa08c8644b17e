/*
Package templating renders pod documents with html/template and provides the
tags and filters templates use to pull in pod content and format values.

A TemplateManager loads views ("*.tmpl.html") and partials ("*.part.html")
from a directory. Rendering happens inside a Build:

	b := tm.BeginBuild(p, graph)
	defer b.End()
	err := b.Render(ctx, w, doc)

Every render binds the tags to the document being rendered. Content tags such
as doc, docs, static, json and yaml record what they read as dependencies of
that document, memoized tags answer repeated calls from a per-build cache,
and formatting filters such as currency and date default to the document's
locale.

Tags take their positional arguments first and then keyword arguments, either
as name/value pairs or as a map built with kw:

	{{ range docs "/content/pages" "order_by" "order" }}...{{ end }}
	{{ $de := kw "locale" "de" }}{{ doc "/content/pages/about.md" $de }}

Filters take their subject last so they can be used in pipelines:

	{{ .Doc.Fields.price | currency "currency" "EUR" }}
	{{ "Hello" | _ }}
*/
package templating
