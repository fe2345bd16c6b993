package ontology

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c360/ontocache/vocabulary"
)

const ex = "http://example.org/zoo#"

func dataProp(local, parent string) *DatatypeProperty {
	p := &DatatypeProperty{Range: vocabulary.XsdString}
	p.URI = ex + local
	p.Domain = ex + "Dog"
	p.Label = LabelFromTranslations(map[string]string{"en": local, "fr": local + "-fr"}, "en")
	if parent != "" {
		p.Parent = ex + parent
	}
	return p
}

func uris(values []*DatatypeProperty) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		out = append(out, v.URI)
	}
	return out
}

func TestClassModel_Children(t *testing.T) {
	c := NewClassModel(ex + "Animal")
	c.AddChild(ex + "Dog")
	c.AddChild(" <" + ex + "Dog> ")
	c.AddChild(ex + "Cat")
	assert.Equal(t, []string{ex + "Dog", ex + "Cat"}, c.Children)
	assert.True(t, c.HasChild(ex+"Cat"))

	clone := c.Clone()
	require.True(t, clone.RemoveChild(ex+"Dog"))
	assert.False(t, clone.RemoveChild(ex+"Dog"))
	assert.Equal(t, []string{ex + "Cat"}, clone.Children)
	assert.Equal(t, []string{ex + "Dog", ex + "Cat"}, c.Children, "clone must not share children")
}

func TestClassModel_InIsDetached(t *testing.T) {
	c := NewClassModel(ex + "Dog")
	c.Label = LabelFromTranslations(map[string]string{"en": "Dog", "fr": "Chien"}, "en")
	p := dataProp("hasColor", "")
	c.DatatypeProperties[p.URI] = p

	fr := c.In("fr")
	assert.Equal(t, "Chien", fr.Label.Value)
	assert.Equal(t, "hasColor-fr", fr.DatatypeProperties[p.URI].Label.Value)

	assert.Equal(t, "Dog", c.Label.Value)
	assert.Equal(t, "hasColor", c.DatatypeProperties[p.URI].Label.Value)
	assert.Equal(t, "Dog", fr.In("en").Label.Value)
}

func TestClassModel_RestrictionFor(t *testing.T) {
	c := NewClassModel(ex + "Dog")
	c.Restrictions["urn:r2"] = &Restriction{URI: "urn:r2", OnProperty: ex + "hasColor"}
	c.Restrictions["urn:r1"] = &Restriction{URI: "urn:r1", OnProperty: ex + "hasColor"}

	r, ok := c.RestrictionFor(ex + "hasColor")
	require.True(t, ok)
	assert.Equal(t, "urn:r1", r.URI)

	_, ok = c.RestrictionFor(ex + "hasName")
	assert.False(t, ok)
}

func TestPropertyTree_View(t *testing.T) {
	tree := NewPropertyTree[*DatatypeProperty](vocabulary.OwlTopDataProperty)
	tree.Add(dataProp("hasShade", "hasColor")) // child before parent
	tree.Add(dataProp("hasColor", ""))
	tree.Add(dataProp("hasName", "topDataProperty"))
	tree.Add(dataProp("hasNickname", "notInTree"))

	view := tree.View("fr")
	require.Len(t, view.Roots, 3)
	assert.Equal(t, ex+"hasColor", view.Roots[0].Value.URI)
	require.Len(t, view.Roots[0].Children, 1)
	assert.Equal(t, "hasShade-fr", view.Roots[0].Children[0].Value.Label.Value)
	assert.Equal(t, 4, view.Len())

	got, _ := tree.Get(ex + "hasShade")
	assert.Equal(t, "hasShade", got.Label.Value, "views must not translate stored properties")
}

func TestPropertyTree_ViewWithoutLanguageIsDetached(t *testing.T) {
	tree := NewPropertyTree[*DatatypeProperty](vocabulary.OwlTopDataProperty)
	tree.Add(dataProp("hasColor", ""))

	view := tree.View("")
	require.Len(t, view.Roots, 1)
	got := view.Roots[0].Value
	assert.Equal(t, "hasColor", got.Label.Value)

	got.Label = NewLabel("changed", "en")
	got.Range = vocabulary.XsdInteger
	stored, ok := tree.Get(ex + "hasColor")
	require.True(t, ok)
	assert.Equal(t, "hasColor", stored.Label.Value)
	assert.Equal(t, vocabulary.XsdString, stored.Range)
	assert.NotSame(t, stored, got)
}

func TestPropertyTree_ReplaceMovesUnderNewParent(t *testing.T) {
	tree := NewPropertyTree[*DatatypeProperty](vocabulary.OwlTopDataProperty)
	tree.Add(dataProp("hasColor", ""))
	tree.Add(dataProp("hasName", ""))
	tree.Add(dataProp("hasShade", "hasColor"))

	tree.Add(dataProp("hasShade", "hasName"))
	assert.Equal(t, 3, tree.Len())

	view := tree.View("")
	require.Len(t, view.Roots, 2)
	assert.Empty(t, view.Roots[0].Children)
	require.Len(t, view.Roots[1].Children, 1)
	assert.Equal(t, ex+"hasShade", view.Roots[1].Children[0].Value.URI)
}

func TestPropertyTree_RemovePromotesChildren(t *testing.T) {
	tree := NewPropertyTree[*DatatypeProperty](vocabulary.OwlTopDataProperty)
	tree.Add(dataProp("hasColor", ""))
	tree.Add(dataProp("hasShade", "hasColor"))
	clone := tree.Clone()

	require.True(t, tree.Remove(ex+"hasColor"))
	assert.False(t, tree.Remove(ex+"hasColor"))
	assert.Equal(t, []string{ex + "hasShade"}, uris(tree.View("").Values()))

	assert.Equal(t, 2, clone.Len(), "clone must be unaffected")
	assert.Equal(t, []string{ex + "hasColor", ex + "hasShade"}, uris(clone.Properties()))
}

func TestPropertyTree_CycleDoesNotLoseNodes(t *testing.T) {
	tree := NewPropertyTree[*DatatypeProperty](vocabulary.OwlTopDataProperty)
	tree.Add(dataProp("a", "b"))
	tree.Add(dataProp("b", "a"))

	view := tree.View("")
	assert.Equal(t, 2, view.Len())
}

func TestClassEntry_PropertiesStayInSync(t *testing.T) {
	c := NewClassModel(ex + "Dog")
	c.DatatypeProperties[ex+"hasName"] = dataProp("hasName", "")
	e := NewClassEntry(c)
	assert.Equal(t, 1, e.DataProperties.Len())

	clone := e.Clone()
	clone.PutDatatypeProperty(dataProp("hasColor", ""))
	assert.True(t, clone.RemoveDatatypeProperty(ex+"hasName"))
	assert.False(t, clone.RemoveDatatypeProperty(ex+"hasName"))

	assert.Contains(t, clone.Class.DatatypeProperties, ex+"hasColor")
	assert.True(t, clone.DataProperties.Contains(ex+"hasColor"))
	assert.NotContains(t, clone.Class.DatatypeProperties, ex+"hasName")

	assert.Contains(t, e.Class.DatatypeProperties, ex+"hasName")
	assert.False(t, e.DataProperties.Contains(ex+"hasColor"))

	op := &ObjectProperty{Range: ex + "Animal"}
	op.URI = ex + "hasFriend"
	clone.PutObjectProperty(op)
	assert.True(t, clone.ObjectProperties.Contains(ex+"hasFriend"))
	assert.True(t, clone.RemoveObjectProperty(ex+"hasFriend"))
	assert.Equal(t, 0, clone.ObjectProperties.Len())
}

func TestTree_Find(t *testing.T) {
	tree := NewTree(&Node[string]{Value: "a", Children: []*Node[string]{{Value: "b"}}})
	n, ok := tree.Find(func(v string) bool { return v == "b" })
	require.True(t, ok)
	assert.Equal(t, "b", n.Value)
	_, ok = tree.Find(func(v string) bool { return v == "z" })
	assert.False(t, ok)
	assert.Equal(t, []string{"a", "b"}, tree.Values())

	var nilTree *Tree[string]
	assert.True(t, nilTree.IsEmpty())
	assert.Equal(t, 0, nilTree.Len())
}
