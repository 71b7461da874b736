package model

import "duonest/store"

const (
	ActionAdd     = "add"
	ActionReset   = "reset"
	ActionComment = "comment"
	ActionClear   = "clear"
)

// Response is the acknowledgement returned by mutations and failures. ID is
// set when a mutation created an entity.
type Response struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	ID      int64  `json:"id,omitempty"`
}

type KissResponse struct {
	Success bool `json:"success"`
	Count   int  `json:"count"`
}

type GalleryResponse struct {
	Success bool                `json:"success"`
	Gallery []store.GalleryItem `json:"gallery"`
}

type NotesResponse struct {
	Success bool         `json:"success"`
	Notes   []store.Note `json:"notes"`
}

type TodosResponse struct {
	Success bool         `json:"success"`
	Todos   []store.Todo `json:"todos"`
}

type ChatsResponse struct {
	Success bool                `json:"success"`
	Chats   []store.ChatMessage `json:"chats"`
}

type MusicResponse struct {
	Success bool         `json:"success"`
	Music   []store.Song `json:"music"`
}

type KissRequest struct {
	Action string `json:"action"`
}

type GalleryRequest struct {
	Action  string `json:"action"`
	ID      int64  `json:"id"`
	Image   string `json:"image"`
	Caption string `json:"caption"`
	Comment string `json:"comment"`
}

type NoteRequest struct {
	Text string `json:"text"`
}

type TodoRequest struct {
	ID   int64  `json:"id"`
	Text string `json:"text"`
}

type ChatRequest struct {
	Action  string `json:"action"`
	ID      int64  `json:"id"`
	Sender  string `json:"sender"`
	Message string `json:"message"`
}

// SongRequest keeps Artist as a pointer: an absent artist becomes "unknown"
// while an explicit empty string is stored as given.
type SongRequest struct {
	Title  string  `json:"title"`
	Artist *string `json:"artist"`
	File   string  `json:"file"`
}

// IDRequest is the body of the delete-by-id calls.
type IDRequest struct {
	ID int64 `json:"id"`
}
