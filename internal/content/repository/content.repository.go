package repository

import (
	"context"
	"time"

	"duonest/store"
)

// ContentRepository applies every resource mutation as one whole-document
// cycle on the store. Methods that persist report whether the save
// succeeded; a failed save has already been logged by the store.
type ContentRepository struct {
	Store *store.Store
}

func NewContentRepository(s *store.Store) *ContentRepository {
	return &ContentRepository{Store: s}
}

func (r *ContentRepository) Document(ctx context.Context) *store.Document {
	var doc *store.Document
	r.Store.View(ctx, func(d *store.Document) { doc = d })
	return doc
}

// --- kiss ---

func (r *ContentRepository) KissCount(ctx context.Context) int {
	return r.Document(ctx).KissCount
}

func (r *ContentRepository) IncrementKiss(ctx context.Context) (int, bool) {
	var count int
	saved := r.Store.Update(ctx, func(d *store.Document) bool {
		d.KissCount++
		count = d.KissCount
		return true
	})
	return count, saved
}

func (r *ContentRepository) ResetKiss(ctx context.Context) bool {
	return r.Store.Update(ctx, func(d *store.Document) bool {
		d.KissCount = 0
		return true
	})
}

// --- gallery ---

// AddGalleryItem assigns a fresh id and inserts the item at the head.
func (r *ContentRepository) AddGalleryItem(ctx context.Context, item store.GalleryItem, now time.Time) (store.GalleryItem, bool) {
	saved := r.Store.Update(ctx, func(d *store.Document) bool {
		item.ID = store.NextID(d, now)
		if item.Comments == nil {
			item.Comments = []store.Comment{}
		}
		d.Gallery = append([]store.GalleryItem{item}, d.Gallery...)
		return true
	})
	return item, saved
}

// AddGalleryComment appends c to the item with id. Nothing is saved when no
// item matches.
func (r *ContentRepository) AddGalleryComment(ctx context.Context, id int64, c store.Comment) (found, saved bool) {
	saved = r.Store.Update(ctx, func(d *store.Document) bool {
		for i := range d.Gallery {
			if d.Gallery[i].ID == id {
				d.Gallery[i].Comments = append(d.Gallery[i].Comments, c)
				found = true
				return true
			}
		}
		return false
	})
	return found, saved
}

// DeleteGalleryItem saves the filtered list even when nothing matched.
func (r *ContentRepository) DeleteGalleryItem(ctx context.Context, id int64) (removed, saved bool) {
	saved = r.Store.Update(ctx, func(d *store.Document) bool {
		d.Gallery, removed = removeByID(d.Gallery, id, func(g store.GalleryItem) int64 { return g.ID })
		return true
	})
	return removed, saved
}

// --- notes ---

func (r *ContentRepository) AddNote(ctx context.Context, note store.Note, now time.Time) (store.Note, bool) {
	saved := r.Store.Update(ctx, func(d *store.Document) bool {
		note.ID = store.NextID(d, now)
		d.Notes = append([]store.Note{note}, d.Notes...)
		return true
	})
	return note, saved
}

func (r *ContentRepository) DeleteNote(ctx context.Context, id int64) (removed, saved bool) {
	saved = r.Store.Update(ctx, func(d *store.Document) bool {
		d.Notes, removed = removeByID(d.Notes, id, func(n store.Note) int64 { return n.ID })
		return true
	})
	return removed, saved
}

// --- todos ---

func (r *ContentRepository) AddTodo(ctx context.Context, todo store.Todo, now time.Time) (store.Todo, bool) {
	saved := r.Store.Update(ctx, func(d *store.Document) bool {
		todo.ID = store.NextID(d, now)
		d.Todos = append(d.Todos, todo)
		return true
	})
	return todo, saved
}

// ToggleTodo flips Completed in place and returns the updated todo.
func (r *ContentRepository) ToggleTodo(ctx context.Context, id int64) (todo store.Todo, found, saved bool) {
	saved = r.Store.Update(ctx, func(d *store.Document) bool {
		for i := range d.Todos {
			if d.Todos[i].ID == id {
				d.Todos[i].Completed = !d.Todos[i].Completed
				todo = d.Todos[i]
				found = true
				return true
			}
		}
		return false
	})
	return todo, found, saved
}

func (r *ContentRepository) DeleteTodo(ctx context.Context, id int64) (removed, saved bool) {
	saved = r.Store.Update(ctx, func(d *store.Document) bool {
		d.Todos, removed = removeByID(d.Todos, id, func(t store.Todo) int64 { return t.ID })
		return true
	})
	return removed, saved
}

// --- chats ---

func (r *ContentRepository) AddChat(ctx context.Context, msg store.ChatMessage, now time.Time) (store.ChatMessage, bool) {
	saved := r.Store.Update(ctx, func(d *store.Document) bool {
		msg.ID = store.NextID(d, now)
		d.Chats = append(d.Chats, msg)
		return true
	})
	return msg, saved
}

func (r *ContentRepository) DeleteChat(ctx context.Context, id int64) (removed, saved bool) {
	saved = r.Store.Update(ctx, func(d *store.Document) bool {
		d.Chats, removed = removeByID(d.Chats, id, func(c store.ChatMessage) int64 { return c.ID })
		return true
	})
	return removed, saved
}

// ClearChats empties the chat log and returns how many messages it held.
func (r *ContentRepository) ClearChats(ctx context.Context) (cleared int, saved bool) {
	saved = r.Store.Update(ctx, func(d *store.Document) bool {
		cleared = len(d.Chats)
		d.Chats = []store.ChatMessage{}
		return true
	})
	return cleared, saved
}

// --- music ---

func (r *ContentRepository) AddSong(ctx context.Context, song store.Song, now time.Time) (store.Song, bool) {
	saved := r.Store.Update(ctx, func(d *store.Document) bool {
		song.ID = store.NextID(d, now)
		d.Music = append(d.Music, song)
		return true
	})
	return song, saved
}

func (r *ContentRepository) DeleteSong(ctx context.Context, id int64) (removed, saved bool) {
	saved = r.Store.Update(ctx, func(d *store.Document) bool {
		d.Music, removed = removeByID(d.Music, id, func(s store.Song) int64 { return s.ID })
		return true
	})
	return removed, saved
}

// removeByID returns items without the entries whose id matches. The result
// is never nil.
func removeByID[T any](items []T, id int64, idOf func(T) int64) ([]T, bool) {
	kept := make([]T, 0, len(items))
	for _, it := range items {
		if idOf(it) != id {
			kept = append(kept, it)
		}
	}
	return kept, len(kept) != len(items)
}
