package main

import (
	"fmt"

	"github.com/adfharrison1/go-odm/pkg/domain"
	"github.com/adfharrison1/go-odm/pkg/odm"
	"github.com/adfharrison1/go-odm/pkg/repository"
)

// demoClasses is the article schema the server ships with
func demoClasses() []*odm.ClassMetadata {
	return []*odm.ClassMetadata{
		{
			Class:          "Article",
			Collection:     "articles",
			Fields:         []string{"title", "content", "author_id", "tag_ids"},
			ReferencesOne:  []odm.Reference{{Name: "author", Class: "Author", Field: "author_id"}},
			ReferencesMany: []odm.Reference{{Name: "tags", Class: "Tag", Field: "tag_ids"}},
			EmbeddedsOne:   []odm.Embedded{{Name: "source", Class: "Source"}},
			EmbeddedsMany:  []odm.Embedded{{Name: "comments", Class: "Comment"}},
		},
		{
			Class:      "Author",
			Collection: "authors",
			Fields:     []string{"name"},
		},
		{
			Class:      "Tag",
			Collection: "tags",
			Fields:     []string{"name"},
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
			EmbeddedsMany: []odm.Embedded{{Name: "infos", Class: "Info"}},
		},
		{
			Class:      "Info",
			IsEmbedded: true,
			Fields:     []string{"note"},
		},
	}
}

// seedDemo writes one article through the repository and returns its id
func seedDemo(ctx *odm.Context, store domain.Store) (string, error) {
	articles, err := repository.New(ctx, store, "Article")
	if err != nil {
		return "", err
	}

	article, err := articles.Create()
	if err != nil {
		return "", err
	}
	defer article.Release()

	for field, value := range map[string]interface{}{
		"title":     "Change tracking",
		"content":   "Only what changed is written back.",
		"author_id": "author-1",
		"tag_ids":   []interface{}{"go", "odm"},
	} {
		if err := article.Set(field, value); err != nil {
			return "", err
		}
	}

	source, err := ctx.Create("Source")
	if err != nil {
		return "", err
	}
	if err := source.Set("name", "go-odm"); err != nil {
		return "", err
	}
	if err := article.SetEmbeddedOne("source", source); err != nil {
		return "", err
	}

	comments, err := article.EmbeddedMany("comments")
	if err != nil {
		return "", err
	}
	for _, name := range []string{"first", "second"} {
		comment, err := ctx.Create("Comment")
		if err != nil {
			return "", err
		}
		if err := comment.Set("name", name); err != nil {
			return "", err
		}
		comments.Add(comment)
	}

	if err := articles.Save(article); err != nil {
		return "", err
	}
	return fmt.Sprintf("%v", article.ID()), nil
}
