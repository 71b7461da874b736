package handler

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"duonest/internal/content/model"
	"duonest/internal/content/service"
	"duonest/pkg/lenient"
	"duonest/pkg/logger"
	"duonest/pkg/response"
)

type ContentHandler struct {
	Service *service.ContentService
}

func NewContentHandler(service *service.ContentService) *ContentHandler {
	return &ContentHandler{Service: service}
}

func (h *ContentHandler) Kiss(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, model.KissResponse{Success: true, Count: h.Service.KissCount(r.Context())})

	case http.MethodPost:
		var req model.KissRequest
		if !decodeBody(w, r, &req) {
			return
		}
		count, err := h.Service.Kiss(r.Context(), req.Action)
		if errors.Is(err, service.ErrUnknownAction) {
			logger.Sugar.Debugf("Ignoring kiss action %q", req.Action)
		}
		writeJSON(w, http.StatusOK, model.KissResponse{Success: true, Count: count})

	default:
		methodNotAllowed(w, http.MethodGet, http.MethodPost)
	}
}

func (h *ContentHandler) Gallery(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, model.GalleryResponse{Success: true, Gallery: h.Service.Gallery(r.Context())})

	case http.MethodPost:
		var req model.GalleryRequest
		if !decodeBody(w, r, &req) {
			return
		}
		switch req.Action {
		case model.ActionAdd:
			item := h.Service.AddPhoto(r.Context(), req.Image, req.Caption)
			writeJSON(w, http.StatusOK, model.Response{Success: true, Message: model.MsgPhotoAdded, ID: item.ID})
		case model.ActionComment:
			if err := h.Service.CommentPhoto(r.Context(), req.ID, req.Comment); err != nil {
				writeJSON(w, http.StatusNotFound, model.Response{Success: false, Message: model.MsgPhotoNotFound})
				return
			}
			writeJSON(w, http.StatusOK, model.Response{Success: true, Message: model.MsgCommentAdded})
		default:
			writeJSON(w, http.StatusBadRequest, model.Response{Success: false, Message: model.MsgUnknownAction})
		}

	case http.MethodDelete:
		var req model.IDRequest
		if !decodeBody(w, r, &req) {
			return
		}
		h.Service.DeletePhoto(r.Context(), idOrQuery(r, req.ID))
		writeJSON(w, http.StatusOK, model.Response{Success: true, Message: model.MsgPhotoDeleted})

	default:
		methodNotAllowed(w, http.MethodGet, http.MethodPost, http.MethodDelete)
	}
}

func (h *ContentHandler) Notes(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, model.NotesResponse{Success: true, Notes: h.Service.Notes(r.Context())})

	case http.MethodPost:
		var req model.NoteRequest
		if !decodeBody(w, r, &req) {
			return
		}
		note := h.Service.AddNote(r.Context(), req.Text)
		writeJSON(w, http.StatusOK, model.Response{Success: true, Message: model.MsgNoteSaved, ID: note.ID})

	case http.MethodDelete:
		var req model.IDRequest
		if !decodeBody(w, r, &req) {
			return
		}
		h.Service.DeleteNote(r.Context(), idOrQuery(r, req.ID))
		writeJSON(w, http.StatusOK, model.Response{Success: true, Message: model.MsgNoteDeleted})

	default:
		methodNotAllowed(w, http.MethodGet, http.MethodPost, http.MethodDelete)
	}
}

func (h *ContentHandler) Todos(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, model.TodosResponse{Success: true, Todos: h.Service.Todos(r.Context())})

	case http.MethodPost:
		var req model.TodoRequest
		if !decodeBody(w, r, &req) {
			return
		}
		todo := h.Service.AddTodo(r.Context(), req.Text)
		writeJSON(w, http.StatusOK, model.Response{Success: true, Message: model.MsgTodoAdded, ID: todo.ID})

	case http.MethodPut:
		var req model.TodoRequest
		if !decodeBody(w, r, &req) {
			return
		}
		if _, err := h.Service.ToggleTodo(r.Context(), idOrQuery(r, req.ID)); err != nil {
			writeJSON(w, http.StatusNotFound, model.Response{Success: false, Message: model.MsgTodoNotFound})
			return
		}
		writeJSON(w, http.StatusOK, model.Response{Success: true, Message: model.MsgTodoToggled})

	case http.MethodDelete:
		var req model.IDRequest
		if !decodeBody(w, r, &req) {
			return
		}
		h.Service.DeleteTodo(r.Context(), idOrQuery(r, req.ID))
		writeJSON(w, http.StatusOK, model.Response{Success: true, Message: model.MsgTodoDeleted})

	default:
		methodNotAllowed(w, http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete)
	}
}

func (h *ContentHandler) Chats(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, model.ChatsResponse{Success: true, Chats: h.Service.Chats(r.Context())})

	case http.MethodPost:
		var req model.ChatRequest
		if !decodeBody(w, r, &req) {
			return
		}
		msg := h.Service.AddChat(r.Context(), req.Sender, req.Message)
		writeJSON(w, http.StatusOK, model.Response{Success: true, Message: model.MsgChatSent, ID: msg.ID})

	case http.MethodDelete:
		var req model.ChatRequest
		if !decodeBody(w, r, &req) {
			return
		}
		action := req.Action
		if action == "" {
			action = r.URL.Query().Get("action")
		}
		if action == model.ActionClear {
			h.Service.ClearChats(r.Context())
			writeJSON(w, http.StatusOK, model.Response{Success: true, Message: model.MsgChatsCleared})
			return
		}
		h.Service.DeleteChat(r.Context(), idOrQuery(r, req.ID))
		writeJSON(w, http.StatusOK, model.Response{Success: true, Message: model.MsgChatDeleted})

	default:
		methodNotAllowed(w, http.MethodGet, http.MethodPost, http.MethodDelete)
	}
}

func (h *ContentHandler) Music(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, model.MusicResponse{Success: true, Music: h.Service.Music(r.Context())})

	case http.MethodPost:
		var req model.SongRequest
		if !decodeBody(w, r, &req) {
			return
		}
		song := h.Service.AddSong(r.Context(), req.Title, req.Artist, req.File)
		writeJSON(w, http.StatusOK, model.Response{Success: true, Message: model.MsgSongAdded, ID: song.ID})

	case http.MethodDelete:
		var req model.IDRequest
		if !decodeBody(w, r, &req) {
			return
		}
		h.Service.DeleteSong(r.Context(), idOrQuery(r, req.ID))
		writeJSON(w, http.StatusOK, model.Response{Success: true, Message: model.MsgSongDeleted})

	default:
		methodNotAllowed(w, http.MethodGet, http.MethodPost, http.MethodDelete)
	}
}

// decodeBody parses a JSON body into v. An empty body leaves v at its zero
// value; missing fields are not validated and scalars are coerced to the
// field's type. Only malformed JSON writes the 400 response and returns
// false.
func decodeBody(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	err := lenient.Decode(r.Body, v)
	if err == nil || errors.Is(err, io.EOF) {
		return true
	}
	logger.Sugar.Debugf("Invalid request body on %s %s: %v", r.Method, r.URL.Path, err)
	writeJSON(w, http.StatusBadRequest, model.Response{Success: false, Message: model.MsgInvalidBody})
	return false
}

// idOrQuery falls back to the "id" query parameter when the body had none.
func idOrQuery(r *http.Request, id int64) int64 {
	if id != 0 {
		return id
	}
	if q, err := strconv.ParseInt(r.URL.Query().Get("id"), 10, 64); err == nil {
		return q
	}
	return 0
}

func methodNotAllowed(w http.ResponseWriter, allowed ...string) {
	for _, m := range allowed {
		w.Header().Add("Allow", m)
	}
	writeJSON(w, http.StatusMethodNotAllowed, model.Response{Success: false, Message: model.MsgMethodNotAllowed})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	response.JSON(w, status, v)
}
