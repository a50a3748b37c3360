package odm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsModified_FreshDocuments(t *testing.T) {
	ctx := newTestContext(t)

	for _, class := range []string{"Article", "Source", "Comment", "Info"} {
		doc := mustCreate(t, ctx, class)
		assert.False(t, doc.IsModified(), class)
	}

	article := persistedArticle(t, ctx, map[string]interface{}{
		"title":    "t",
		"source":   map[string]interface{}{"name": "s"},
		"comments": []interface{}{map[string]interface{}{"name": "A"}},
	})
	assert.False(t, article.IsModified())

	mustSaved(t, mustGroup(t, article, "comments"))
	assert.False(t, article.IsModified())
}

func TestIsModified_EndToEnd(t *testing.T) {
	ctx := newTestContext(t)
	root := persistedArticle(t, ctx, map[string]interface{}{
		"comments": []interface{}{
			map[string]interface{}{"name": "S1"},
			map[string]interface{}{"name": "S2"},
		},
	})
	group := mustGroup(t, root, "comments")

	saved := mustSaved(t, group)
	require.Len(t, saved, 2)
	assert.Empty(t, group.Added())
	assert.Empty(t, group.Removed())
	assert.False(t, root.IsModified())

	group.Add(mustCreate(t, ctx, "Comment"))
	assert.True(t, root.IsModified())

	require.NoError(t, root.ClearModified())
	assert.False(t, root.IsModified())
	assert.Empty(t, group.Added())
	assert.Len(t, mustSaved(t, group), 3)
}

func TestClearModified_Idempotent(t *testing.T) {
	ctx := newTestContext(t)
	article := persistedArticle(t, ctx, map[string]interface{}{
		"title":    "t",
		"source":   map[string]interface{}{"name": "s"},
		"comments": []interface{}{map[string]interface{}{"name": "A"}},
	})
	group := mustGroup(t, article, "comments")
	comment := mustSaved(t, group)[0]

	require.NoError(t, article.Set("title", "changed"))
	require.NoError(t, article.SetEmbeddedOne("source", mustCreate(t, ctx, "Source")))
	require.NoError(t, comment.Set("text", "hello"))
	group.Remove(comment)
	group.Add(mustCreate(t, ctx, "Comment"))
	require.True(t, article.IsModified())

	for i := 0; i < 2; i++ {
		require.NoError(t, article.ClearModified())
		assert.False(t, article.IsModified())
		assert.Empty(t, article.FieldsModified())
		assert.Empty(t, article.EmbeddedsOneChanged())
	}
}

func TestIsModified_NewRoot(t *testing.T) {
	ctx := newTestContext(t)
	article := mustCreate(t, ctx, "Article")
	require.True(t, article.IsNew())

	require.NoError(t, article.SetEmbeddedOne("source", mustCreate(t, ctx, "Source")))
	assert.False(t, article.IsModified())

	require.NoError(t, article.Set("title", "draft"))
	assert.True(t, article.IsModified())

	require.NoError(t, article.ClearModified())
	assert.False(t, article.IsModified())
}

func TestIsModified_EmbeddedUsesRootFlag(t *testing.T) {
	ctx := newTestContext(t)
	article := persistedArticle(t, ctx, map[string]interface{}{
		"comments": []interface{}{map[string]interface{}{"name": "A"}},
	})
	comment := mustSaved(t, mustGroup(t, article, "comments"))[0]

	assert.False(t, comment.IsNew())
	require.NoError(t, comment.SetEmbeddedOne("source", mustCreate(t, ctx, "Source")))
	assert.True(t, comment.IsModified())

	require.NoError(t, article.SetIsNew(true))
	assert.True(t, comment.IsNew())
	assert.False(t, comment.IsModified())
}

func TestIsModified_DeepSavedDocument(t *testing.T) {
	ctx := newTestContext(t)
	article := persistedArticle(t, ctx, map[string]interface{}{
		"comments": []interface{}{
			map[string]interface{}{
				"name":   "A",
				"source": map[string]interface{}{"name": "s"},
			},
		},
	})
	comment := mustSaved(t, mustGroup(t, article, "comments"))[0]
	source, err := comment.EmbeddedOne("source")
	require.NoError(t, err)
	assert.Equal(t, "comments.0.source", pathOf(t, source))

	require.NoError(t, source.Set("url", "u"))
	assert.True(t, article.IsModified())

	require.NoError(t, article.ClearModified())
	assert.False(t, source.IsModified())
	assert.False(t, article.IsModified())
}

func TestClearModified_FailureKeepsBaseline(t *testing.T) {
	ctx := newTestContext(t)
	comment := mustCreate(t, ctx, "Comment")
	require.NoError(t, comment.Set("name", "draft"))

	source := mustCreate(t, ctx, "Source")
	require.NoError(t, source.Set("name", "wire"))
	require.NoError(t, comment.SetEmbeddedOne("source", source))

	infos := mustGroup(t, comment, "infos")
	infos.Add(mustCreate(t, ctx, "Info"))

	err := comment.ClearModified()
	assert.ErrorIs(t, err, ErrNoRootAndPath)

	assert.True(t, comment.IsFieldModified("name"))
	assert.True(t, comment.IsEmbeddedOneChanged("source"))
	assert.True(t, source.IsFieldModified("name"))
	assert.Len(t, infos.Added(), 1)

	assert.ErrorIs(t, infos.MarkAllSaved(), ErrNoRootAndPath)
	assert.Len(t, infos.Added(), 1)
}
