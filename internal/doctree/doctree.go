// Package doctree provides pure traversal and lookup over the
// book/chapter/article tree and the per-article comment forest. Absence is an
// ordinary outcome, reported through ok booleans, never an error.
package doctree

import "granthalaya/api/internal/store"

// CommentLoc addresses a comment inside its forest: the node itself plus a
// pointer to the list that directly contains it and the node's index there,
// so callers can splice without re-searching.
type CommentLoc struct {
	List  *[]store.Comment
	Index int
	Node  *store.Comment
}

// FindChapter walks the chapter forest depth first and returns the chapter
// with the given ID. Chapter IDs are unique across the flattened tree of one
// book, so the first hit is the only hit.
func FindChapter(chapters []store.Chapter, chapterID string) (*store.Chapter, bool) {
	for i := range chapters {
		if chapters[i].ID == chapterID {
			return &chapters[i], true
		}
		if found, ok := FindChapter(chapters[i].Children, chapterID); ok {
			return found, true
		}
	}
	return nil, false
}

// FindArticle locates the article addressed by (chapterID, verse). The verse
// scan runs only at the chapter whose ID matches; an article with the same
// verse label in any other chapter is never returned.
func FindArticle(chapters []store.Chapter, chapterID, verse string) (*store.Article, bool) {
	for i := range chapters {
		chapter := &chapters[i]
		if chapter.ID == chapterID {
			for j := range chapter.Articles {
				if chapter.Articles[j].Verse == verse {
					return &chapter.Articles[j], true
				}
			}
			return nil, false
		}
		if found, ok := FindArticle(chapter.Children, chapterID, verse); ok {
			return found, true
		}
	}
	return nil, false
}

// FindComment searches a comment forest depth first for the comment with the
// given ID. Identity is checked before descending into replies.
func FindComment(comments *[]store.Comment, commentID string) (CommentLoc, bool) {
	for i := range *comments {
		node := &(*comments)[i]
		if node.ID == commentID {
			return CommentLoc{List: comments, Index: i, Node: node}, true
		}
		if len(node.Replies) > 0 {
			if loc, ok := FindComment(&node.Replies, commentID); ok {
				return loc, true
			}
		}
	}
	return CommentLoc{}, false
}

// CollectCommentIDs returns every comment ID in the forest, in depth-first
// order.
func CollectCommentIDs(comments []store.Comment) []string {
	var ids []string
	for i := range comments {
		ids = append(ids, comments[i].ID)
		ids = append(ids, CollectCommentIDs(comments[i].Replies)...)
	}
	return ids
}

// FlattenChapters returns every chapter in the forest, parents before
// children.
func FlattenChapters(chapters []store.Chapter) []*store.Chapter {
	var out []*store.Chapter
	for i := range chapters {
		out = append(out, &chapters[i])
		out = append(out, FlattenChapters(chapters[i].Children)...)
	}
	return out
}
