package api

import (
	"net/http"
	"strings"

	"probel/internal/model"
)

func (s *Server) handleNotesList(w http.ResponseWriter, r *http.Request) {
	notes, err := s.st.ListNotes(r.Context(), userFrom(r.Context()).ID)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeData(w, http.StatusOK, notes)
}

func (s *Server) handleNotesCreate(w http.ResponseWriter, r *http.Request) {
	var in model.Note
	if !decodeBody(w, r, &in) {
		return
	}
	n, err := s.st.CreateNote(r.Context(), userFrom(r.Context()).ID, in)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeData(w, http.StatusCreated, n)
}

func (s *Server) handleNoteGet(w http.ResponseWriter, r *http.Request) {
	n, err := s.st.GetNote(r.Context(), userFrom(r.Context()).ID, r.PathValue("id"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeData(w, http.StatusOK, n)
}

func (s *Server) handleNoteUpdate(w http.ResponseWriter, r *http.Request) {
	var p model.NotePatch
	if !decodeBody(w, r, &p) {
		return
	}
	n, err := s.st.UpdateNote(r.Context(), userFrom(r.Context()).ID, r.PathValue("id"), p)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeData(w, http.StatusOK, n)
}

func (s *Server) handleNoteDelete(w http.ResponseWriter, r *http.Request) {
	if err := s.st.DeleteNote(r.Context(), userFrom(r.Context()).ID, r.PathValue("id")); err != nil {
		s.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleFlowchartsList(w http.ResponseWriter, r *http.Request) {
	fs, err := s.st.ListFlowcharts(r.Context(), userFrom(r.Context()).ID)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeData(w, http.StatusOK, fs)
}

func (s *Server) handleFlowchartsCreate(w http.ResponseWriter, r *http.Request) {
	var in model.Flowchart
	if !decodeBody(w, r, &in) {
		return
	}
	f, err := s.st.CreateFlowchart(r.Context(), userFrom(r.Context()).ID, in)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeData(w, http.StatusCreated, f)
}

func (s *Server) handleFlowchartGet(w http.ResponseWriter, r *http.Request) {
	f, err := s.st.GetFlowchart(r.Context(), userFrom(r.Context()).ID, r.PathValue("id"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeData(w, http.StatusOK, f)
}

func (s *Server) handleFlowchartUpdate(w http.ResponseWriter, r *http.Request) {
	var p model.FlowchartPatch
	if !decodeBody(w, r, &p) {
		return
	}
	f, err := s.st.UpdateFlowchart(r.Context(), userFrom(r.Context()).ID, r.PathValue("id"), p)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeData(w, http.StatusOK, f)
}

func (s *Server) handleFlowchartDelete(w http.ResponseWriter, r *http.Request) {
	if err := s.st.DeleteFlowchart(r.Context(), userFrom(r.Context()).ID, r.PathValue("id")); err != nil {
		s.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type chatInput struct {
	Title string `json:"title"`
}

func (s *Server) handleChatsList(w http.ResponseWriter, r *http.Request) {
	cs, err := s.st.ListChats(r.Context(), userFrom(r.Context()).ID)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeData(w, http.StatusOK, cs)
}

func (s *Server) handleChatsCreate(w http.ResponseWriter, r *http.Request) {
	var in chatInput
	if !decodeBody(w, r, &in) {
		return
	}
	c, err := s.st.CreateChat(r.Context(), userFrom(r.Context()).ID, in.Title)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeData(w, http.StatusCreated, c)
}

func (s *Server) handleChatGet(w http.ResponseWriter, r *http.Request) {
	c, err := s.st.GetChat(r.Context(), userFrom(r.Context()).ID, r.PathValue("id"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeData(w, http.StatusOK, c)
}

func (s *Server) handleChatUpdate(w http.ResponseWriter, r *http.Request) {
	var in chatInput
	if !decodeBody(w, r, &in) {
		return
	}
	c, err := s.st.RenameChat(r.Context(), userFrom(r.Context()).ID, r.PathValue("id"), in.Title)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeData(w, http.StatusOK, c)
}

func (s *Server) handleChatDelete(w http.ResponseWriter, r *http.Request) {
	if err := s.st.DeleteChat(r.Context(), userFrom(r.Context()).ID, r.PathValue("id")); err != nil {
		s.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleMessagesList(w http.ResponseWriter, r *http.Request) {
	ms, err := s.st.ListMessages(r.Context(), userFrom(r.Context()).ID, r.PathValue("id"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeData(w, http.StatusOK, ms)
}

func (s *Server) handleMessagesCreate(w http.ResponseWriter, r *http.Request) {
	var in model.ChatMessage
	if !decodeBody(w, r, &in) {
		return
	}
	in.ChatID = r.PathValue("id")
	m, err := s.st.AddMessage(r.Context(), userFrom(r.Context()).ID, in)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeData(w, http.StatusCreated, m)
}

// handleMessagesDelete removes all messages of ?chat_id=.
func (s *Server) handleMessagesDelete(w http.ResponseWriter, r *http.Request) {
	chatID := strings.TrimSpace(r.URL.Query().Get("chat_id"))
	if chatID == "" {
		writeError(w, http.StatusBadRequest, "missing chat_id")
		return
	}
	n, err := s.st.DeleteMessages(r.Context(), userFrom(r.Context()).ID, chatID)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeData(w, http.StatusOK, map[string]any{"deleted": n})
}
