package odm

import (
	"testing"

	"github.com/adfharrison1/go-odm/pkg/domain"
	"github.com/stretchr/testify/require"
)

func testClasses() []*ClassMetadata {
	return []*ClassMetadata{
		{
			Class:          "Article",
			Collection:     "articles",
			Fields:         []string{"title", "content", "author_id", "tag_ids"},
			ReferencesOne:  []Reference{{Name: "author", Class: "Author", Field: "author_id"}},
			ReferencesMany: []Reference{{Name: "tags", Class: "Tag", Field: "tag_ids"}},
			EmbeddedsOne:   []Embedded{{Name: "source", Class: "Source"}},
			EmbeddedsMany:  []Embedded{{Name: "comments", Class: "Comment"}},
		},
		{
			Class:      "Source",
			IsEmbedded: true,
			Fields:     []string{"name", "url"},
		},
		{
			Class:         "Comment",
			IsEmbedded:    true,
			Fields:        []string{"name", "text"},
			EmbeddedsOne:  []Embedded{{Name: "source", Class: "Source"}},
			EmbeddedsMany: []Embedded{{Name: "infos", Class: "Info"}},
		},
		{
			Class:      "Info",
			IsEmbedded: true,
			Fields:     []string{"note"},
		},
	}
}

func newTestContext(t *testing.T) *Context {
	t.Helper()
	registry, err := NewRegistry(testClasses()...)
	require.NoError(t, err)
	return NewContext(registry)
}

func mustCreate(t *testing.T, ctx *Context, class string) *Document {
	t.Helper()
	doc, err := ctx.Create(class)
	require.NoError(t, err)
	return doc
}

// persistedArticle hydrates an article the way a repository does after a find
func persistedArticle(t *testing.T, ctx *Context, raw domain.Document) *Document {
	t.Helper()
	article := mustCreate(t, ctx, "Article")
	require.NoError(t, article.SetDocumentData(raw))
	require.NoError(t, article.SetIsNew(false))
	return article
}

func mustGroup(t *testing.T, doc *Document, name string) *EmbeddedGroup {
	t.Helper()
	group, err := doc.EmbeddedMany(name)
	require.NoError(t, err)
	return group
}

func mustSaved(t *testing.T, group *EmbeddedGroup) []*Document {
	t.Helper()
	saved, err := group.Saved()
	require.NoError(t, err)
	return saved
}

func pathOf(t *testing.T, doc *Document) string {
	t.Helper()
	_, path, err := doc.RootAndPath()
	require.NoError(t, err)
	return path
}
