package service

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"duonest/internal/content/model"
	"duonest/internal/content/repository"
	"duonest/pkg/logger"
	"duonest/socket"
	"duonest/store"
)

const (
	stampLayout = "2006/01/02 - 15:04"
	dayLayout   = "2006/01/02"
	clockLayout = "15:04"

	defaultArtist = "unknown"
)

// ErrNotFound is returned when the id in a comment or toggle request matches
// nothing.
var ErrNotFound = errors.New("item not found")

// ErrUnknownAction is returned for an action value the resource does not
// support.
var ErrUnknownAction = errors.New("unknown action")

// Broadcaster receives real-time events. *socket.Hub implements it.
type Broadcaster interface {
	Publish(msg socket.WSMessage)
}

type ContentService struct {
	Repo *repository.ContentRepository
	Hub  Broadcaster
	Now  func() time.Time
}

// NewContentService wires the service. hub may be nil, in which case no
// events are published.
func NewContentService(repo *repository.ContentRepository, hub Broadcaster) *ContentService {
	return &ContentService{Repo: repo, Hub: hub, Now: time.Now}
}

func (s *ContentService) now() time.Time {
	if s.Now == nil {
		return time.Now()
	}
	return s.Now()
}

func (s *ContentService) publish(msgType, sender string, payload interface{}) {
	if s.Hub == nil {
		return
	}
	var raw json.RawMessage
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			logger.Sugar.Errorf("Error marshalling %s event: %v", msgType, err)
			return
		}
		raw = b
	}
	s.Hub.Publish(socket.WSMessage{Type: msgType, Sender: sender, Payload: raw})
}

func warnUnsaved(what string, saved bool) {
	if !saved {
		logger.Sugar.Warnf("%s applied but the document was not saved", what)
	}
}

// --- kiss ---

func (s *ContentService) KissCount(ctx context.Context) int {
	return s.Repo.KissCount(ctx)
}

// Kiss applies action ("add" or "reset") and returns the count afterwards.
func (s *ContentService) Kiss(ctx context.Context, action string) (int, error) {
	var count int
	switch action {
	case model.ActionAdd:
		var saved bool
		count, saved = s.Repo.IncrementKiss(ctx)
		warnUnsaved("kiss add", saved)
	case model.ActionReset:
		warnUnsaved("kiss reset", s.Repo.ResetKiss(ctx))
	default:
		return s.Repo.KissCount(ctx), ErrUnknownAction
	}
	s.publish(socket.KissType, "", map[string]int{"count": count})
	return count, nil
}

// --- gallery ---

func (s *ContentService) Gallery(ctx context.Context) []store.GalleryItem {
	return s.Repo.Document(ctx).Gallery
}

func (s *ContentService) AddPhoto(ctx context.Context, image, caption string) store.GalleryItem {
	now := s.now()
	item, saved := s.Repo.AddGalleryItem(ctx, store.GalleryItem{
		Image:    image,
		Caption:  caption,
		Date:     now.Format(stampLayout),
		Comments: []store.Comment{},
	}, now)
	warnUnsaved("gallery add", saved)
	return item
}

func (s *ContentService) CommentPhoto(ctx context.Context, id int64, text string) error {
	found, saved := s.Repo.AddGalleryComment(ctx, id, store.Comment{
		Text: text,
		Date: s.now().Format(stampLayout),
	})
	if !found {
		return ErrNotFound
	}
	warnUnsaved("gallery comment", saved)
	return nil
}

func (s *ContentService) DeletePhoto(ctx context.Context, id int64) {
	_, saved := s.Repo.DeleteGalleryItem(ctx, id)
	warnUnsaved("gallery delete", saved)
}

// --- notes ---

func (s *ContentService) Notes(ctx context.Context) []store.Note {
	return s.Repo.Document(ctx).Notes
}

func (s *ContentService) AddNote(ctx context.Context, text string) store.Note {
	now := s.now()
	note, saved := s.Repo.AddNote(ctx, store.Note{Text: text, Date: now.Format(stampLayout)}, now)
	warnUnsaved("note add", saved)
	return note
}

func (s *ContentService) DeleteNote(ctx context.Context, id int64) {
	_, saved := s.Repo.DeleteNote(ctx, id)
	warnUnsaved("note delete", saved)
}

// --- todos ---

func (s *ContentService) Todos(ctx context.Context) []store.Todo {
	return s.Repo.Document(ctx).Todos
}

func (s *ContentService) AddTodo(ctx context.Context, text string) store.Todo {
	now := s.now()
	todo, saved := s.Repo.AddTodo(ctx, store.Todo{Text: text, Completed: false, Date: now.Format(dayLayout)}, now)
	warnUnsaved("todo add", saved)
	return todo
}

func (s *ContentService) ToggleTodo(ctx context.Context, id int64) (store.Todo, error) {
	todo, found, saved := s.Repo.ToggleTodo(ctx, id)
	if !found {
		return store.Todo{}, ErrNotFound
	}
	warnUnsaved("todo toggle", saved)
	return todo, nil
}

func (s *ContentService) DeleteTodo(ctx context.Context, id int64) {
	_, saved := s.Repo.DeleteTodo(ctx, id)
	warnUnsaved("todo delete", saved)
}

// --- chats ---

func (s *ContentService) Chats(ctx context.Context) []store.ChatMessage {
	return s.Repo.Document(ctx).Chats
}

// AddChat stores a message and publishes it to connected sockets.
func (s *ContentService) AddChat(ctx context.Context, sender, message string) store.ChatMessage {
	now := s.now()
	msg, saved := s.Repo.AddChat(ctx, store.ChatMessage{
		Sender:  sender,
		Message: message,
		Time:    now.Format(clockLayout),
	}, now)
	warnUnsaved("chat add", saved)
	s.publish(socket.ChatType, sender, msg)
	return msg
}

// PostChat lets the socket hub store messages typed into a live connection.
func (s *ContentService) PostChat(ctx context.Context, sender, message string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.AddChat(ctx, sender, message)
	return nil
}

func (s *ContentService) DeleteChat(ctx context.Context, id int64) {
	removed, saved := s.Repo.DeleteChat(ctx, id)
	warnUnsaved("chat delete", saved)
	if removed {
		s.publish(socket.ChatDeleteType, "", map[string]int64{"id": id})
	}
}

func (s *ContentService) ClearChats(ctx context.Context) {
	cleared, saved := s.Repo.ClearChats(ctx)
	warnUnsaved("chat clear", saved)
	logger.Sugar.Infof("Cleared %d chat messages", cleared)
	s.publish(socket.ChatClearType, "", nil)
}

// --- music ---

func (s *ContentService) Music(ctx context.Context) []store.Song {
	return s.Repo.Document(ctx).Music
}

// AddSong stores a song. A nil artist means the field was absent.
func (s *ContentService) AddSong(ctx context.Context, title string, artist *string, file string) store.Song {
	now := s.now()
	a := defaultArtist
	if artist != nil {
		a = *artist
	}
	song, saved := s.Repo.AddSong(ctx, store.Song{
		Title:  title,
		Artist: a,
		File:   file,
		Date:   now.Format(stampLayout),
	}, now)
	warnUnsaved("song add", saved)
	return song
}

func (s *ContentService) DeleteSong(ctx context.Context, id int64) {
	_, saved := s.Repo.DeleteSong(ctx, id)
	warnUnsaved("song delete", saved)
}
