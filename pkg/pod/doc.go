/*
Package pod models the content of a pod (documents, collections, static files
and structured data files) and provides FS, a store that reads a pod laid out
on disk:

	podspec.yaml                   default locale, locales, URL root
	content/<collection>/_blueprint.yaml
	content/<collection>/*.yaml    documents (front matter only)
	content/<collection>/*.md      documents (YAML front matter + Markdown body)
	static/...                     static files
	data/...                       JSON, YAML and CSV files
	translations/<locale>.yaml     msgid -> translation catalogs

Document keys starting with "$" are built-in ($title, $order, $category,
$hidden, $parent, $view); every other key lands in Fields. A key tagged with a
locale ("title@de") replaces its untagged sibling when that locale is loaded.
*/
package pod
