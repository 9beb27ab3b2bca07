package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/romaisa914/lingo-translator/internal/app"
	"github.com/romaisa914/lingo-translator/internal/domain"
	"github.com/sirupsen/logrus"
)

const maxBodyBytes = 1 << 20

var errBadRequest = errors.New("bad request")

// Handler exposes the use cases as a JSON API. Every request is scoped to the
// session named by the lingo_session cookie.
type Handler struct {
	service *app.Service
	log     logrus.FieldLogger
	ws      *WSHandler
}

func NewHandler(service *app.Service, log logrus.FieldLogger) *Handler {
	if log == nil {
		log = logrus.StandardLogger()
	}
	log = log.WithField("component", "http")
	return &Handler{
		service: service,
		log:     log,
		ws:      NewWSHandler(service, log),
	}
}

// Routes registers every endpoint on a new mux.
func (h *Handler) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})

	mux.HandleFunc("GET /api/home", h.session(h.home))
	mux.HandleFunc("DELETE /api/session", h.session(h.endSession))

	mux.HandleFunc("GET /api/lessons", h.lessons)
	mux.HandleFunc("GET /api/lessons/{id}", h.lesson)
	mux.HandleFunc("GET /api/quizzes", h.quizzes)
	mux.HandleFunc("GET /api/quizzes/{id}", h.quiz)

	mux.HandleFunc("GET /api/quiz", h.session(h.currentQuiz))
	mux.HandleFunc("POST /api/quiz/start", h.session(h.startQuiz))
	mux.HandleFunc("POST /api/quiz/submit", h.session(h.submitAnswer))
	mux.HandleFunc("POST /api/quiz/advance", h.session(h.advance))
	mux.HandleFunc("POST /api/quiz/restart", h.session(h.restartQuiz))

	mux.HandleFunc("GET /api/progress", h.session(h.progress))
	mux.HandleFunc("POST /api/progress/lessons/{id}/complete", h.session(h.completeLesson))
	mux.HandleFunc("POST /api/progress/reset", h.session(h.resetProgress))
	mux.HandleFunc("POST /api/progress/complete-all", h.session(h.completeAll))
	mux.HandleFunc("GET /api/progress/export", h.session(h.exportProgress))
	mux.HandleFunc("POST /api/progress/import", h.session(h.importProgress))

	mux.HandleFunc("POST /api/translate", h.translate)
	mux.HandleFunc("POST /api/chat", h.session(h.chat))
	mux.HandleFunc("GET /ws/chat", h.ws.ServeWS)
	return mux
}

type sessionHandler func(w http.ResponseWriter, r *http.Request, sid string)

func (h *Handler) session(next sessionHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sid, cookie := sessionID(r)
		if cookie != nil {
			http.SetCookie(w, cookie)
		}
		next(w, r, sid)
	}
}

func (h *Handler) home(w http.ResponseWriter, r *http.Request, sid string) {
	summary, err := h.service.Home(r.Context(), sid)
	h.respond(w, r, summary, err)
}

func (h *Handler) endSession(w http.ResponseWriter, r *http.Request, sid string) {
	if err := h.service.EndSession(r.Context(), sid); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type lessonView struct {
	domain.Lesson
	Lines []string `json:"lines"`
}

func (h *Handler) lessons(w http.ResponseWriter, r *http.Request) {
	lessons, err := h.service.Lessons(r.Context())
	h.respond(w, r, lessons, err)
}

func (h *Handler) lesson(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	lesson, err := h.service.Lesson(r.Context(), id)
	h.respond(w, r, lessonView{Lesson: lesson, Lines: lesson.Lines()}, err)
}

func (h *Handler) quizzes(w http.ResponseWriter, r *http.Request) {
	quizzes, err := h.service.Quizzes(r.Context())
	h.respond(w, r, quizzes, err)
}

func (h *Handler) quiz(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	quiz, err := h.service.Quiz(r.Context(), id)
	h.respond(w, r, quiz, err)
}

func (h *Handler) currentQuiz(w http.ResponseWriter, r *http.Request, sid string) {
	view, err := h.service.CurrentQuiz(r.Context(), sid)
	h.respond(w, r, view, err)
}

type startRequest struct {
	QuizID int `json:"quiz_id"`
}

func (h *Handler) startQuiz(w http.ResponseWriter, r *http.Request, sid string) {
	var req startRequest
	if err := decode(w, r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	view, err := h.service.StartQuiz(r.Context(), sid, req.QuizID)
	h.respond(w, r, view, err)
}

type submitRequest struct {
	Index  *int   `json:"index"`
	Answer string `json:"answer"`
}

type submitResponse struct {
	Result app.Result   `json:"result"`
	Quiz   app.QuizView `json:"quiz"`
}

func (h *Handler) submitAnswer(w http.ResponseWriter, r *http.Request, sid string) {
	var req submitRequest
	if err := decode(w, r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	if req.Index == nil {
		h.writeError(w, r, fmt.Errorf("%w: index is required", errBadRequest))
		return
	}
	result, view, err := h.service.SubmitAnswer(r.Context(), sid, *req.Index, req.Answer)
	h.respond(w, r, submitResponse{Result: result, Quiz: view}, err)
}

func (h *Handler) advance(w http.ResponseWriter, r *http.Request, sid string) {
	view, err := h.service.Advance(r.Context(), sid)
	h.respond(w, r, view, err)
}

func (h *Handler) restartQuiz(w http.ResponseWriter, r *http.Request, sid string) {
	view, err := h.service.RestartQuiz(r.Context(), sid)
	h.respond(w, r, view, err)
}

func (h *Handler) progress(w http.ResponseWriter, r *http.Request, sid string) {
	summary, err := h.service.ProgressSummary(r.Context(), sid)
	h.respond(w, r, summary, err)
}

func (h *Handler) completeLesson(w http.ResponseWriter, r *http.Request, sid string) {
	id, err := pathID(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	summary, err := h.service.MarkLessonComplete(r.Context(), sid, id)
	h.respond(w, r, summary, err)
}

func (h *Handler) resetProgress(w http.ResponseWriter, r *http.Request, sid string) {
	summary, err := h.service.ResetProgress(r.Context(), sid)
	h.respond(w, r, summary, err)
}

func (h *Handler) completeAll(w http.ResponseWriter, r *http.Request, sid string) {
	summary, err := h.service.CompleteAllLessons(r.Context(), sid)
	h.respond(w, r, summary, err)
}

func (h *Handler) exportProgress(w http.ResponseWriter, r *http.Request, sid string) {
	snap, err := h.service.ExportProgress(r.Context(), sid)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Disposition", `attachment; filename="progress.json"`)
	writeJSON(w, http.StatusOK, snap)
}

func (h *Handler) importProgress(w http.ResponseWriter, r *http.Request, sid string) {
	var snap domain.ProgressSnapshot
	if err := decode(w, r, &snap); err != nil {
		h.writeError(w, r, err)
		return
	}
	summary, err := h.service.ImportProgress(r.Context(), sid, snap)
	h.respond(w, r, summary, err)
}

type translateRequest struct {
	Text       string `json:"text"`
	SourceLang string `json:"source_lang"`
	TargetLang string `json:"target_lang"`
}

type translateResponse struct {
	Translation string `json:"translation"`
}

func (h *Handler) translate(w http.ResponseWriter, r *http.Request) {
	var req translateRequest
	if err := decode(w, r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	if req.SourceLang == "" {
		req.SourceLang = "en"
	}
	if req.TargetLang == "" {
		req.TargetLang = "de"
	}
	out := h.service.Translate(r.Context(), req.Text, req.SourceLang, req.TargetLang)
	writeJSON(w, http.StatusOK, translateResponse{Translation: out})
}

type chatRequest struct {
	Message string `json:"message"`
}

type chatResponse struct {
	Reply string `json:"reply"`
}

func (h *Handler) chat(w http.ResponseWriter, r *http.Request, sid string) {
	var req chatRequest
	if err := decode(w, r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		h.writeError(w, r, fmt.Errorf("%w: message is empty", errBadRequest))
		return
	}
	reply, err := h.service.Chat(r.Context(), sid, req.Message)
	h.respond(w, r, chatResponse{Reply: reply}, err)
}

func (h *Handler) respond(w http.ResponseWriter, r *http.Request, body any, err error) {
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, body)
}

type errorBody struct {
	Error string `json:"error"`
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		h.log.WithError(err).WithFields(logrus.Fields{
			"method": r.Method,
			"path":   r.URL.Path,
		}).Error("request failed")
		msg = "internal error"
	}
	writeJSON(w, status, errorBody{Error: msg})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrProtocolViolation):
		return http.StatusConflict
	case errors.Is(err, domain.ErrUnknownQuiz),
		errors.Is(err, domain.ErrUnknownLesson),
		errors.Is(err, domain.ErrNoActiveQuiz):
		return http.StatusNotFound
	case errors.Is(err, errBadRequest):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func decode(w http.ResponseWriter, r *http.Request, out any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: invalid JSON body: %v", errBadRequest, err)
	}
	return nil
}

func pathID(r *http.Request) (int, error) {
	id, err := strconv.Atoi(r.PathValue("id"))
	if err != nil {
		return 0, fmt.Errorf("%w: invalid id %q", errBadRequest, r.PathValue("id"))
	}
	return id, nil
}
