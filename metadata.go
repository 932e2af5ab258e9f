package readaloud

import "strings"

// buildMetadata extracts Metadata from the parsed OPF package, handling both
// ePub 2 (attributes on the DC elements) and ePub 3 (refines metas).
func buildMetadata(pkg *opfPackage) Metadata {
	refines := buildRefinesMap(pkg.Metadata.Metas)

	md := Metadata{
		Version:     pkg.Version,
		Titles:      extractValues(pkg.Metadata.Titles),
		Authors:     extractAuthors(pkg.Metadata.Creators, refines),
		Language:    extractValues(pkg.Metadata.Languages),
		Identifiers: extractIdentifiers(pkg.Metadata.Identifiers, refines),
		Subjects:    extractValues(pkg.Metadata.Subjects),
	}

	if len(pkg.Metadata.Publishers) > 0 {
		md.Publisher = strings.TrimSpace(pkg.Metadata.Publishers[0].Value)
	}
	if len(pkg.Metadata.Dates) > 0 {
		md.Date = strings.TrimSpace(pkg.Metadata.Dates[0].Value)
	}
	if len(pkg.Metadata.Descriptions) > 0 {
		md.Description = strings.TrimSpace(pkg.Metadata.Descriptions[0].Value)
	}
	if len(pkg.Metadata.Rights) > 0 {
		md.Rights = strings.TrimSpace(pkg.Metadata.Rights[0].Value)
	}

	return md
}

// refineKey identifies one refined property of one element.
type refineKey struct {
	id       string // target element id, without the leading "#"
	property string // e.g., "file-as", "role", "identifier-type"
}

// buildRefinesMap collects ePub 3 <meta refines="#id" property="...">
// elements into a lookup map keyed by (element id, property).
func buildRefinesMap(metas []opfMeta) map[refineKey]string {
	m := make(map[refineKey]string)
	for _, meta := range metas {
		if meta.Refines == "" || meta.Property == "" {
			continue
		}
		id := strings.TrimPrefix(meta.Refines, "#")
		key := refineKey{id: id, property: meta.Property}
		if _, ok := m[key]; !ok {
			m[key] = strings.TrimSpace(meta.Value)
		}
	}
	return m
}

// extractValues collects the non-empty trimmed text of the given elements.
func extractValues(elems []opfDCElement) []string {
	var out []string
	for _, e := range elems {
		v := strings.TrimSpace(e.Value)
		if v != "" {
			out = append(out, v)
		}
	}
	return out
}

// extractAuthors builds Author entries from dc:creator elements. ePub 2
// attributes take precedence; ePub 3 refines fill in what the attributes
// leave empty.
func extractAuthors(creators []opfDCElement, refines map[refineKey]string) []Author {
	var out []Author
	for _, c := range creators {
		name := strings.TrimSpace(c.Value)
		if name == "" {
			continue
		}
		a := Author{
			Name:   name,
			FileAs: c.FileAs,
			Role:   c.Role,
		}
		if a.FileAs == "" && c.ID != "" {
			a.FileAs = refines[refineKey{id: c.ID, property: "file-as"}]
		}
		if a.Role == "" && c.ID != "" {
			a.Role = refines[refineKey{id: c.ID, property: "role"}]
		}
		out = append(out, a)
	}
	return out
}

// extractIdentifiers builds Identifier entries from dc:identifier elements.
func extractIdentifiers(ids []opfDCElement, refines map[refineKey]string) []Identifier {
	var out []Identifier
	for _, e := range ids {
		v := strings.TrimSpace(e.Value)
		if v == "" {
			continue
		}
		id := Identifier{
			Value:  v,
			Scheme: e.Scheme,
			ID:     e.ID,
		}
		if id.Scheme == "" && e.ID != "" {
			id.Scheme = refines[refineKey{id: e.ID, property: "identifier-type"}]
		}
		out = append(out, id)
	}
	return out
}
