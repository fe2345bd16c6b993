package cache

import (
	"strings"

	"github.com/c360/ontocache/ontology"
	"github.com/c360/ontocache/sparql"
	"github.com/c360/ontocache/vocabulary"
)

// labelProjection adds one optional label and one optional comment per
// configured language to a query, plus an untagged fallback. The query size
// grows with the number of languages, never with the number of classes.
type labelProjection struct {
	languages   []string
	defaultLang string
}

// tags returns the projected language tags, "" standing for untagged values.
func (p labelProjection) tags() []string {
	return append(append([]string(nil), p.languages...), "")
}

func langVar(prefix, lang string) string {
	if lang == "" {
		return prefix + "_untagged"
	}
	var b strings.Builder
	b.WriteString(prefix)
	b.WriteByte('_')
	for _, r := range lang {
		if r >= 'a' && r <= 'z' || r >= '0' && r <= '9' {
			b.WriteRune(r)
		} else {
			b.WriteByte('_')
		}
	}
	return b.String()
}

// vars returns the variables the projection binds.
func (p labelProjection) vars() []string {
	var out []string
	for _, lang := range p.tags() {
		out = append(out, langVar("label", lang), langVar("comment", lang))
	}
	return out
}

// apply adds the projection for subject to q.
func (p labelProjection) apply(q *sparql.SelectQuery, subject string) {
	q.Vars = append(q.Vars, p.vars()...)
	for _, lang := range p.tags() {
		q.Where.Optional(langGroup(subject, vocabulary.RdfsLabel, langVar("label", lang), lang))
		q.Where.Optional(langGroup(subject, vocabulary.RdfsComment, langVar("comment", lang), lang))
	}
}

func langGroup(subject, predicate, variable, lang string) *sparql.Group {
	return sparql.NewGroup(
		sparql.Triple(sparql.Var(subject), sparql.IRI(predicate), sparql.Var(variable)),
	).Filter(sparql.LangMatches{Var: variable, Lang: lang})
}

// texts accumulates the translations seen for one resource over many rows.
// The first value seen for a language wins.
type texts struct {
	labels   map[string]string
	comments map[string]string
}

func newTexts() *texts {
	return &texts{labels: make(map[string]string), comments: make(map[string]string)}
}

func (t *texts) collect(p labelProjection, row sparql.Row) {
	for _, lang := range p.tags() {
		if term, ok := row.Get(langVar("label", lang)); ok {
			keepFirst(t.labels, term)
		}
		if term, ok := row.Get(langVar("comment", lang)); ok {
			keepFirst(t.comments, term)
		}
	}
}

func keepFirst(m map[string]string, term sparql.Term) {
	key := ontology.NormalizeLang(term.Lang)
	if _, seen := m[key]; !seen {
		m[key] = term.Value
	}
}

func (t *texts) label(p labelProjection) ontology.Label {
	return ontology.LabelFromTranslations(t.labels, p.defaultLang)
}

func (t *texts) comment(p labelProjection) ontology.Label {
	return ontology.LabelFromTranslations(t.comments, p.defaultLang)
}

func iris(ids []string) []sparql.Term {
	out := make([]sparql.Term, 0, len(ids))
	for _, id := range ids {
		out = append(out, sparql.IRI(id))
	}
	return out
}
