package odm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmbeddedOne_TracksFirstOriginal(t *testing.T) {
	ctx := newTestContext(t)
	article := persistedArticle(t, ctx, map[string]interface{}{
		"source": map[string]interface{}{"name": "origin"},
	})

	original, err := article.EmbeddedOne("source")
	require.NoError(t, err)
	require.NotNil(t, original)
	assert.False(t, article.IsEmbeddedOneChanged("source"))
	assert.Same(t, original, article.GetOriginalEmbeddedOneValue("source"))

	first := mustCreate(t, ctx, "Source")
	second := mustCreate(t, ctx, "Source")
	require.NoError(t, article.SetEmbeddedOne("source", first))
	require.NoError(t, article.SetEmbeddedOne("source", second))

	assert.True(t, article.IsEmbeddedOneChanged("source"))
	assert.Same(t, original, article.GetOriginalEmbeddedOneValue("source"))
	assert.Equal(t, map[string]*Document{"source": original}, article.EmbeddedsOneChanged())

	current, err := article.EmbeddedOne("source")
	require.NoError(t, err)
	assert.Same(t, second, current)
}

func TestEmbeddedOne_AbsentOriginal(t *testing.T) {
	ctx := newTestContext(t)
	article := persistedArticle(t, ctx, map[string]interface{}{"title": "t"})

	assert.False(t, article.IsEmbeddedOneChanged("source"))
	assert.Nil(t, article.GetOriginalEmbeddedOneValue("source"))

	source := mustCreate(t, ctx, "Source")
	require.NoError(t, article.SetEmbeddedOne("source", source))
	assert.True(t, article.IsEmbeddedOneChanged("source"))
	assert.Nil(t, article.GetOriginalEmbeddedOneValue("source"))

	// Clearing the relation keeps it present, so the change is still seen
	require.NoError(t, article.SetEmbeddedOne("source", nil))
	assert.True(t, article.IsEmbeddedOneChanged("source"))
	assert.Nil(t, article.GetOriginalEmbeddedOneValue("source"))
}

func TestEmbeddedOne_SameValueIsNoop(t *testing.T) {
	ctx := newTestContext(t)
	article := persistedArticle(t, ctx, map[string]interface{}{
		"source": map[string]interface{}{"name": "origin"},
	})
	source, err := article.EmbeddedOne("source")
	require.NoError(t, err)

	require.NoError(t, article.SetEmbeddedOne("source", source))
	assert.False(t, article.IsEmbeddedOneChanged("source"))
	assert.False(t, article.IsModified())
}

func TestEmbeddedOne_AssignsRootAndPath(t *testing.T) {
	ctx := newTestContext(t)
	article := mustCreate(t, ctx, "Article")
	comment := mustCreate(t, ctx, "Comment")
	source := mustCreate(t, ctx, "Source")

	// Attaching a subtree later re-derives the paths below it
	require.NoError(t, comment.SetEmbeddedOne("source", source))
	_, _, err := source.RootAndPath()
	assert.ErrorIs(t, err, ErrNoRootAndPath)

	mustGroup(t, article, "comments").Add(comment)

	root, path, err := source.RootAndPath()
	require.NoError(t, err)
	assert.Same(t, article, root)
	assert.Equal(t, "comments._add0.source", path)
}

func TestEmbeddedOne_Errors(t *testing.T) {
	ctx := newTestContext(t)
	article := mustCreate(t, ctx, "Article")

	_, err := article.EmbeddedOne("missing")
	assert.ErrorIs(t, err, ErrUnknownRelation)

	err = article.SetEmbeddedOne("missing", nil)
	assert.ErrorIs(t, err, ErrUnknownRelation)

	err = article.SetEmbeddedOne("source", mustCreate(t, ctx, "Info"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "expects Source")
}

func TestEmbeddedOne_ClearIsNotRecursive(t *testing.T) {
	ctx := newTestContext(t)
	article := persistedArticle(t, ctx, map[string]interface{}{
		"comments": []interface{}{
			map[string]interface{}{"name": "c1"},
		},
	})
	comment := mustSaved(t, mustGroup(t, article, "comments"))[0]

	require.NoError(t, comment.SetEmbeddedOne("source", mustCreate(t, ctx, "Source")))
	require.NoError(t, article.SetEmbeddedOne("source", mustCreate(t, ctx, "Source")))

	article.ClearEmbeddedsOneChanged()

	assert.False(t, article.IsEmbeddedOneChanged("source"))
	assert.True(t, comment.IsEmbeddedOneChanged("source"))
}

func TestEmbeddedOne_NewRootSuppression(t *testing.T) {
	tests := []struct {
		name     string
		isNew    bool
		modified bool
	}{
		{name: "new root", isNew: true, modified: false},
		{name: "persisted root", isNew: false, modified: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := newTestContext(t)
			article := mustCreate(t, ctx, "Article")
			require.NoError(t, article.SetDocumentData(map[string]interface{}{
				"source": map[string]interface{}{"name": "origin"},
			}))
			require.NoError(t, article.SetIsNew(tt.isNew))
			require.False(t, article.IsModified())

			replacement := mustCreate(t, ctx, "Source")
			require.NoError(t, article.SetEmbeddedOne("source", replacement))

			assert.True(t, article.IsEmbeddedOneChanged("source"))
			assert.Equal(t, tt.modified, article.IsModified())
		})
	}
}

func TestEmbeddedOne_ModifiedChild(t *testing.T) {
	ctx := newTestContext(t)
	article := persistedArticle(t, ctx, map[string]interface{}{
		"source": map[string]interface{}{"name": "origin"},
	})
	source, err := article.EmbeddedOne("source")
	require.NoError(t, err)
	assert.Equal(t, "source", pathOf(t, source))

	require.NoError(t, source.Set("url", "http://example.com"))
	assert.True(t, article.IsModified())

	require.NoError(t, article.ClearModified())
	assert.False(t, source.IsModified())
	assert.False(t, article.IsModified())
}
