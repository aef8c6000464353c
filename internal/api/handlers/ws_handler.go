package handlers

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
	"github.com/yoockh/dojoportal/internal/api/middleware"
	"github.com/yoockh/dojoportal/internal/carousel"
	"github.com/yoockh/dojoportal/internal/dependencies/clock"
	"github.com/yoockh/dojoportal/internal/guard"
	"github.com/yoockh/dojoportal/internal/models"
	"github.com/yoockh/dojoportal/internal/realtime"
	"github.com/yoockh/dojoportal/internal/records"
	"github.com/yoockh/dojoportal/internal/services"
	"github.com/yoockh/dojoportal/internal/session"
	"github.com/yoockh/dojoportal/internal/utils"
)

const (
	wsReadTimeout  = 60 * time.Second
	wsPingInterval = 25 * time.Second
	wsWriteTimeout = 10 * time.Second

	// base64 upload of maxUploadBytes plus room for the rest of the frame
	wsMaxMessageBytes = maxUploadBytes/3*4 + 64<<10
)

type WSDeps struct {
	Media     services.MediaService
	Funds     records.Service[models.FundRecord, models.FundDraft]
	Players   records.Service[models.PlayerRecord, models.PlayerDraft]
	Profiles  session.ProfileEnsurer
	Events    session.EventSource
	Bus       realtime.Bus
	Scheduler clock.Scheduler
	Interval  time.Duration
	Origins   []string // empty allows any origin
	Log       logrus.FieldLogger
}

// WSHandler serves the live views. Every connection mounts its own
// session store plus either a carousel controller or a record editor, and
// tears them down on disconnect.
type WSHandler struct {
	d        WSDeps
	upgrader websocket.Upgrader
}

func NewWSHandler(d WSDeps) *WSHandler {
	allowed := map[string]struct{}{}
	for _, o := range d.Origins {
		allowed[o] = struct{}{}
	}
	return &WSHandler{
		d: d,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				if len(allowed) == 0 {
					return true
				}
				_, ok := allowed[r.Header.Get("Origin")]
				return ok
			},
		},
	}
}

type wsClientMsg struct {
	Type string `json:"type"`

	// carousel
	Index       int    `json:"index"`
	Name        string `json:"name"`
	ContentType string `json:"content_type"`
	DataBase64  string `json:"data_base64"`
	Embed       string `json:"embed"`

	// carousel remove, record edit/remove
	ID string `json:"id"`

	// record set_draft
	Draft json.RawMessage `json:"draft"`
}

type wsError struct {
	Type    string     `json:"type"`
	Code    utils.Code `json:"code"`
	Message string     `json:"message"`
}

type wsConn struct {
	c  *websocket.Conn
	mu sync.Mutex
}

func (w *wsConn) writeJSON(v any) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	_ = w.c.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
	return w.c.WriteJSON(v)
}

func (w *wsConn) writeError(err error) {
	_ = w.writeJSON(wsError{Type: "error", Code: utils.CodeOf(err), Message: utils.UserMessage(err)})
}

func (w *wsConn) ping() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.c.WriteControl(websocket.PingMessage, nil, time.Now().Add(wsWriteTimeout))
}

// live is one mounted view.
type live struct {
	conn      *wsConn
	store     *session.Store
	ctx       context.Context
	log       logrus.FieldLogger
	readLimit int64
}

// mount upgrades the request and starts a session store for the caller.
// The returned cleanup closes the connection and unsubscribes.
func (h *WSHandler) mount(c *gin.Context, view string) (*live, func(), bool) {
	identity := middleware.IdentityFrom(c)

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// upgrade already wrote response in most cases
		return nil, nil, false
	}

	ctx, cancel := context.WithCancel(c.Request.Context())
	log := h.d.Log.WithFields(logrus.Fields{"view": view, "user_id": c.GetString("user_id")})
	l := &live{conn: &wsConn{c: conn}, store: session.New(h.d.Profiles), ctx: ctx, log: log, readLimit: wsMaxMessageBytes}

	l.store.OnError(func(err error) {
		log.WithError(err).Warn("session update failed")
		l.conn.writeError(err)
	})

	if err := l.store.Handle(ctx, identity); err != nil {
		l.conn.writeError(err)
	}
	if identity != nil && h.d.Events != nil {
		if err := l.store.Watch(ctx, h.d.Events, identity.ID); err != nil {
			log.WithError(err).Warn("auth event subscription failed")
		}
	}

	stopPing := make(chan struct{})
	go func() {
		t := time.NewTicker(wsPingInterval)
		defer t.Stop()
		for {
			select {
			case <-stopPing:
				return
			case <-t.C:
				if err := l.conn.ping(); err != nil {
					return
				}
			}
		}
	}()

	return l, func() {
		close(stopPing)
		cancel()
		l.store.Close()
		_ = conn.Close()
	}, true
}

// readLoop decodes client messages until the connection drops. Frames over
// readLimit close the connection.
func (l *live) readLoop(handle func(wsClientMsg)) {
	conn := l.conn.c
	if l.readLimit > 0 {
		conn.SetReadLimit(l.readLimit)
	}
	_ = conn.SetReadDeadline(time.Now().Add(wsReadTimeout))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(wsReadTimeout))
	})

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return
		}
		_ = conn.SetReadDeadline(time.Now().Add(wsReadTimeout))

		var msg wsClientMsg
		if err := json.Unmarshal(data, &msg); err != nil {
			l.conn.writeError(utils.E(utils.CodeInvalidArgument, "WSHandler.read", "invalid json", err))
			continue
		}
		handle(msg)
	}
}

func (l *live) sendSession(st session.State) {
	if st.Loading {
		return
	}
	_ = l.conn.writeJSON(gin.H{
		"type":     "session",
		"user":     st.Identity,
		"role":     st.Role(),
		"is_admin": st.IsAdmin(),
	})
}

// Carousel is the home page slideshow. Anyone may watch; admins may also
// change it.
func (h *WSHandler) Carousel(c *gin.Context) {
	l, cleanup, ok := h.mount(c, "carousel")
	if !ok {
		return
	}
	defer cleanup()

	ctrl := carousel.NewController(h.d.Media, h.d.Scheduler, h.d.Interval, l.log)
	defer ctrl.Close()

	send := func(st carousel.State) {
		_ = l.conn.writeJSON(gin.H{
			"type":         "carousel",
			"items":        st.Items,
			"active_index": st.ActiveIndex,
			"active":       st.Active(),
			"busy":         st.Busy,
		})
	}
	ctrl.OnChange(send)
	l.store.OnChange(l.sendSession)
	l.sendSession(l.store.State())

	stop, err := carousel.Sync(l.ctx, h.d.Bus, h.d.Media, ctrl, l.log)
	if err != nil {
		l.conn.writeError(err)
		return
	}
	defer stop()

	l.readLoop(func(msg wsClientMsg) {
		actor := l.store.State()
		var err error

		switch msg.Type {
		case "next":
			ctrl.Next()
		case "prev":
			ctrl.Prev()
		case "select":
			ctrl.Select(msg.Index)
		case "upload":
			var body []byte
			body, err = base64.StdEncoding.DecodeString(msg.DataBase64)
			if err != nil {
				err = utils.E(utils.CodeInvalidArgument, "WSHandler.Carousel", "data_base64 is not valid base64", err)
				break
			}
			if len(body) == 0 {
				err = utils.E(utils.CodeInvalidArgument, "WSHandler.Carousel", "file is empty", nil)
				break
			}
			if len(body) > maxUploadBytes {
				err = utils.E(utils.CodeInvalidArgument, "WSHandler.Carousel", "file too large (max 50MB)", nil)
				break
			}
			ct := msg.ContentType
			if ct == "" {
				ct = http.DetectContentType(body)
			}
			_, err = ctrl.Upload(l.ctx, actor, services.UploadFile{Name: msg.Name, ContentType: ct, Body: bytes.NewReader(body)})
		case "add_embed":
			_, err = ctrl.AddEmbed(l.ctx, actor, msg.Embed)
		case "remove":
			for _, item := range ctrl.State().Items {
				if item.ID == msg.ID {
					err = ctrl.Remove(l.ctx, actor, item)
					break
				}
			}
		default:
			err = utils.E(utils.CodeInvalidArgument, "WSHandler.Carousel", "unknown message type", nil)
		}

		if err != nil {
			l.conn.writeError(err)
		}
	})
}

// Funds is the live funds ledger console.
func (h *WSHandler) Funds(c *gin.Context) {
	serveConsole(h, c, "funds", h.d.Funds, records.FundKind, func(st records.EditorState[models.FundRecord, models.FundDraft]) gin.H {
		return gin.H{"total": records.Total(st.Items)}
	})
}

// Players is the live player roster console.
func (h *WSHandler) Players(c *gin.Context) {
	serveConsole(h, c, "players", h.d.Players, records.PlayerKind, nil)
}

func serveConsole[T models.Record[T], D any](
	h *WSHandler,
	c *gin.Context,
	view string,
	svc records.Service[T, D],
	kind records.Kind[T, D],
	extra func(records.EditorState[T, D]) gin.H,
) {
	l, cleanup, ok := h.mount(c, view)
	if !ok {
		return
	}
	defer cleanup()

	// losing admin rights mid-connection ends the console
	demoted := func(st session.State) bool {
		d := guard.Admin(st)
		if d == guard.Render || d == guard.Placeholder {
			return false
		}
		_ = l.conn.writeJSON(gin.H{"type": "redirect", "target": d.Target()})
		_ = l.conn.c.Close()
		return true
	}
	if demoted(l.store.State()) {
		return
	}
	l.store.OnChange(func(st session.State) {
		l.sendSession(st)
		demoted(st)
	})
	l.sendSession(l.store.State())

	editor := records.NewEditor(svc, kind)
	editor.OnChange(func(st records.EditorState[T, D]) {
		frame := gin.H{
			"type":       view,
			"items":      st.Items,
			"draft":      st.Draft,
			"editing_id": st.EditingID,
			"busy":       st.Busy,
			"error":      st.Error,
		}
		if extra != nil {
			for k, v := range extra(st) {
				frame[k] = v
			}
		}
		_ = l.conn.writeJSON(frame)
	})

	stop, err := editor.Sync(l.ctx, h.d.Bus, l.log)
	if err != nil {
		l.conn.writeError(err)
		return
	}
	defer stop()

	l.readLoop(func(msg wsClientMsg) {
		if guard.Admin(l.store.State()) != guard.Render {
			return
		}

		var err error
		switch msg.Type {
		case "set_draft":
			var d D
			if err = json.Unmarshal(msg.Draft, &d); err != nil {
				err = utils.E(utils.CodeInvalidArgument, "WSHandler.Console", "invalid draft", err)
				break
			}
			editor.SetDraft(d)
		case "edit":
			rec, found := editor.Find(msg.ID)
			if !found {
				err = utils.E(utils.CodeNotFound, "WSHandler.Console", kind.Label+" not found", nil)
				break
			}
			editor.Edit(rec)
		case "reset":
			editor.Reset()
		case "submit":
			err = editor.Submit(l.ctx)
		case "remove":
			if rec, found := editor.Find(msg.ID); found {
				err = editor.Remove(l.ctx, rec)
			}
		default:
			err = utils.E(utils.CodeInvalidArgument, "WSHandler.Console", "unknown message type", nil)
		}

		if err != nil {
			l.conn.writeError(err)
		}
	})
}
