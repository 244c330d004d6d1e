package rest

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"github.com/banibsnetworks-source/banibs-production-sub001"
	"github.com/banibsnetworks-source/banibs-production-sub001/internal/domain"
	"github.com/banibsnetworks-source/banibs-production-sub001/internal/present/rest/presenter"
	"github.com/banibsnetworks-source/banibs-production-sub001/internal/service"
	"github.com/banibsnetworks-source/banibs-production-sub001/internal/usecase"
)

const defaultFeedLimit = 100

type Handler struct {
	config    domain.Config
	graph     *usecase.GraphUsecase
	access    *usecase.AccessUsecase
	scheduler *usecase.SchedulerUsecase
	ranker    *usecase.FeedRanker
	content   usecase.ContentRepository
	signal    *service.SignalService
}

func NewHandler(
	config domain.Config,
	graph *usecase.GraphUsecase,
	access *usecase.AccessUsecase,
	scheduler *usecase.SchedulerUsecase,
	ranker *usecase.FeedRanker,
	content usecase.ContentRepository,
	signal *service.SignalService,
) *Handler {
	return &Handler{
		config:    config,
		graph:     graph,
		access:    access,
		scheduler: scheduler,
		ranker:    ranker,
		content:   content,
		signal:    signal,
	}
}

func (h *Handler) RegisterRoutes(e *echo.Echo) {
	e.POST("/api/v1/graph/:user/refresh", h.handleGraphRefresh)
	e.POST("/api/v1/graph/refresh-all", h.handleGraphRefreshAll)
	e.GET("/api/v1/graph/:user/edges", h.handleGraphEdges)
	e.GET("/api/v1/graph/:user/meta", h.handleGraphMeta)
	e.GET("/api/v1/graph/:user/traverse", h.handleGraphTraverse)
	e.GET("/api/v1/graph/:user/peoples-of-peoples", h.handlePeoplesOfPeoples)
	e.GET("/api/v1/graph/:user/reach", h.handleReachScore)
	e.GET("/api/v1/graph/shared-circle", h.handleSharedCircle)

	e.GET("/api/v1/access/content", h.handleAccessContent)
	e.GET("/api/v1/access/dm", h.handleAccessDM)
	e.GET("/api/v1/access/profile", h.handleAccessProfile)
	e.GET("/api/v1/access/comment", h.handleAccessComment)
	e.POST("/api/v1/access/mention", h.handleAccessMention)
	e.GET("/api/v1/access/room", h.handleAccessRoom)

	e.POST("/api/v1/notifications", h.handleEnqueue)
	e.POST("/api/v1/notifications/drain", h.handleDrain)
	e.GET("/api/v1/notifications/ready", h.handleReady)
	e.GET("/api/v1/notifications/stuck", h.handleStuck)

	e.GET("/api/v1/feed/shadow/rank", h.handleShadowRank)
	e.GET("/api/v1/feed/shadow/diversity", h.handleShadowDiversity)

	e.GET("/api/v1/realtime", h.handleRealtime)
}

// --- graph ---

func (h *Handler) handleGraphRefresh(c echo.Context) error {
	ctx := c.Request().Context()

	count, err := h.graph.RefreshEdges(ctx, c.Param("user"))
	if err != nil {
		return presenter.InternalError(c, err)
	}
	return presenter.OK(c, echo.Map{"edges": count})
}

func (h *Handler) handleGraphRefreshAll(c echo.Context) error {
	ctx := c.Request().Context()

	report, err := h.graph.RefreshAll(ctx)
	if err != nil {
		return presenter.InternalError(c, err)
	}
	return presenter.OK(c, report)
}

func (h *Handler) handleGraphEdges(c echo.Context) error {
	ctx := c.Request().Context()

	var tier *banibs.Tier
	if raw := c.QueryParam("tier"); raw != "" {
		parsed := banibs.ParseTier(raw)
		if !parsed.Valid() {
			return presenter.BadRequestMessage(c, "unrecognized tier")
		}
		tier = &parsed
	}

	edges, err := h.graph.GetEdges(ctx, c.Param("user"), tier)
	if err != nil {
		return presenter.InternalError(c, err)
	}
	return presenter.OK(c, edges)
}

func (h *Handler) handleGraphMeta(c echo.Context) error {
	ctx := c.Request().Context()

	meta, err := h.graph.GetMeta(ctx, c.Param("user"))
	if err != nil {
		return presenter.NotFound(c, "trust graph meta not found")
	}
	return presenter.OK(c, meta)
}

func (h *Handler) handleGraphTraverse(c echo.Context) error {
	ctx := c.Request().Context()

	depth := 1
	if raw := c.QueryParam("depth"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 || parsed > 3 {
			return presenter.BadRequestMessage(c, "depth must be 1, 2 or 3")
		}
		depth = parsed
	}

	layers, err := h.graph.TraverseMultihop(ctx, c.Param("user"), depth)
	if err != nil {
		return presenter.InternalError(c, err)
	}
	return presenter.OK(c, layers)
}

func (h *Handler) handlePeoplesOfPeoples(c echo.Context) error {
	ctx := c.Request().Context()

	result, err := h.graph.PeoplesOfPeoples(ctx, c.Param("user"))
	if err != nil {
		return presenter.InternalError(c, err)
	}
	return presenter.OK(c, result)
}

func (h *Handler) handleReachScore(c echo.Context) error {
	ctx := c.Request().Context()

	report, err := h.graph.ReachScore(ctx, c.Param("user"))
	if err != nil {
		return presenter.InternalError(c, err)
	}
	return presenter.OK(c, report)
}

func (h *Handler) handleSharedCircle(c echo.Context) error {
	ctx := c.Request().Context()

	a := c.QueryParam("a")
	b := c.QueryParam("b")
	if a == "" || b == "" {
		return presenter.BadRequestMessage(c, "both a and b are required")
	}

	overlap, err := h.graph.SharedCircle(ctx, a, b)
	if err != nil {
		return presenter.InternalError(c, err)
	}
	return presenter.OK(c, overlap)
}

// --- access ---

func (h *Handler) handleAccessContent(c echo.Context) error {
	ctx := c.Request().Context()

	author := c.QueryParam("author")
	viewer := c.QueryParam("viewer")
	visibility := banibs.ParseVisibility(c.QueryParam("visibility"))
	if author == "" || viewer == "" || !visibility.Valid() {
		return presenter.BadRequestMessage(c, "author, viewer and visibility are required")
	}

	decision, err := h.access.CanSeeContent(ctx, author, viewer, visibility)
	if err != nil {
		return presenter.InternalError(c, err)
	}
	return presenter.OK(c, decision)
}

func (h *Handler) handleAccessDM(c echo.Context) error {
	ctx := c.Request().Context()

	sender := c.QueryParam("sender")
	recipient := c.QueryParam("recipient")
	if sender == "" || recipient == "" {
		return presenter.BadRequestMessage(c, "sender and recipient are required")
	}
	existingThread := c.QueryParam("existing_thread") == "true"

	decision, err := h.access.CanSendDM(ctx, sender, recipient, existingThread)
	if err != nil {
		return presenter.InternalError(c, err)
	}
	return presenter.OK(c, decision)
}

func (h *Handler) handleAccessProfile(c echo.Context) error {
	ctx := c.Request().Context()

	owner := c.QueryParam("owner")
	viewer := c.QueryParam("viewer")
	if owner == "" || viewer == "" {
		return presenter.BadRequestMessage(c, "owner and viewer are required")
	}

	fields, err := h.access.ProfileVisibility(ctx, owner, viewer)
	if err != nil {
		return presenter.InternalError(c, err)
	}
	return presenter.OK(c, fields)
}

func (h *Handler) handleAccessComment(c echo.Context) error {
	ctx := c.Request().Context()

	author := c.QueryParam("author")
	commenter := c.QueryParam("commenter")
	visibility := banibs.ParseVisibility(c.QueryParam("visibility"))
	if author == "" || commenter == "" || !visibility.Valid() {
		return presenter.BadRequestMessage(c, "author, commenter and visibility are required")
	}

	decision, err := h.access.CanComment(ctx, author, commenter, visibility)
	if err != nil {
		return presenter.InternalError(c, err)
	}
	return presenter.OK(c, decision)
}

type mentionRequest struct {
	Actor  string `json:"actor"`
	Target string `json:"target"`
}

func (h *Handler) handleAccessMention(c echo.Context) error {
	ctx := c.Request().Context()

	var req mentionRequest
	if err := c.Bind(&req); err != nil {
		return presenter.BadRequest(c, err)
	}
	if req.Actor == "" || req.Target == "" {
		return presenter.BadRequestMessage(c, "actor and target are required")
	}

	decision, envelope, err := h.access.CanMention(ctx, req.Actor, req.Target)
	if err != nil {
		return presenter.InternalError(c, err)
	}
	return presenter.OK(c, echo.Map{
		"decision": decision,
		"envelope": envelope,
	})
}

func (h *Handler) handleAccessRoom(c echo.Context) error {
	ctx := c.Request().Context()

	owner := c.QueryParam("owner")
	visitor := c.QueryParam("visitor")
	if owner == "" || visitor == "" {
		return presenter.BadRequestMessage(c, "owner and visitor are required")
	}

	decision, err := h.access.RoomEntry(ctx, owner, visitor)
	if err != nil {
		return presenter.InternalError(c, err)
	}
	return presenter.OK(c, decision)
}

// --- notifications ---

type enqueueRequest struct {
	Recipient string `json:"recipient"`
	Actor     string `json:"actor"`
	Type      string `json:"type"`
	Payload   string `json:"payload"`
}

func (h *Handler) handleEnqueue(c echo.Context) error {
	ctx := c.Request().Context()

	var req enqueueRequest
	if err := c.Bind(&req); err != nil {
		return presenter.BadRequest(c, err)
	}
	if req.Recipient == "" || req.Actor == "" || req.Type == "" {
		return presenter.BadRequestMessage(c, "recipient, actor and type are required")
	}

	tier, err := h.graph.TierOf(ctx, req.Recipient, req.Actor)
	if err != nil {
		return presenter.InternalError(c, err)
	}
	mutual, err := h.graph.MutualPeoples(ctx, req.Recipient, req.Actor)
	if err != nil {
		return presenter.InternalError(c, err)
	}

	envelope, err := h.scheduler.Enqueue(ctx, usecase.EnqueueInput{
		Recipient:     req.Recipient,
		Actor:         req.Actor,
		ActorTier:     tier,
		Type:          req.Type,
		Payload:       req.Payload,
		MutualPeoples: mutual,
	})
	if err != nil {
		return presenter.InternalError(c, err)
	}
	if envelope == nil {
		return presenter.OK(c, echo.Map{"enqueued": false})
	}
	return presenter.OK(c, echo.Map{"enqueued": true, "envelope": envelope})
}

func (h *Handler) handleDrain(c echo.Context) error {
	ctx := c.Request().Context()

	report, err := h.scheduler.Drain(ctx, time.Now().UTC())
	if err != nil {
		return presenter.InternalError(c, err)
	}
	return presenter.OK(c, report)
}

func (h *Handler) handleReady(c echo.Context) error {
	ctx := c.Request().Context()

	ready, err := h.scheduler.ReadyForDelivery(ctx, time.Now().UTC())
	if err != nil {
		return presenter.InternalError(c, err)
	}
	return presenter.OK(c, ready)
}

func (h *Handler) handleStuck(c echo.Context) error {
	ctx := c.Request().Context()

	stuck, err := h.scheduler.StuckEnvelopes(ctx, time.Now().UTC())
	if err != nil {
		return presenter.InternalError(c, err)
	}
	return presenter.OK(c, stuck)
}

// --- feed (shadow mode only) ---

// viewerRelationships maps each author the viewer classified to the
// assigned tier; authors without an edge fall back to the unclassified
// default downstream.
func (h *Handler) viewerRelationships(c echo.Context, viewer string) (map[string]banibs.Tier, error) {
	edges, err := h.graph.GetEdges(c.Request().Context(), viewer, nil)
	if err != nil {
		return nil, err
	}
	relationships := make(map[string]banibs.Tier, len(edges))
	for _, edge := range edges {
		relationships[edge.Target] = edge.Tier
	}
	return relationships, nil
}

func (h *Handler) feedLimit(c echo.Context) int {
	if raw := c.QueryParam("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			return parsed
		}
	}
	return defaultFeedLimit
}

func (h *Handler) handleShadowRank(c echo.Context) error {
	ctx := c.Request().Context()

	viewer := c.QueryParam("viewer")
	if viewer == "" {
		return presenter.BadRequestMessage(c, "viewer is required")
	}

	posts, err := h.content.ListRecent(ctx, h.feedLimit(c))
	if err != nil {
		return presenter.InternalError(c, err)
	}
	relationships, err := h.viewerRelationships(c, viewer)
	if err != nil {
		return presenter.InternalError(c, err)
	}

	now := time.Now().UTC()
	ranked := h.ranker.Rank(posts, relationships, now)
	deltas := h.ranker.RankDelta(posts, ranked)

	return presenter.OK(c, echo.Map{
		"ranked": ranked,
		"deltas": deltas,
	})
}

func (h *Handler) handleShadowDiversity(c echo.Context) error {
	ctx := c.Request().Context()

	viewer := c.QueryParam("viewer")
	if viewer == "" {
		return presenter.BadRequestMessage(c, "viewer is required")
	}

	posts, err := h.content.ListRecent(ctx, h.feedLimit(c))
	if err != nil {
		return presenter.InternalError(c, err)
	}
	relationships, err := h.viewerRelationships(c, viewer)
	if err != nil {
		return presenter.InternalError(c, err)
	}

	report := h.ranker.Diversity(posts, relationships)
	warnings := h.ranker.DetectSuppression(report)

	return presenter.OK(c, echo.Map{
		"diversity": report,
		"warnings":  warnings,
	})
}

// --- realtime ---

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

type realtimeRequest struct {
	Type     string   `json:"type"`
	Channels []string `json:"channels"`
}

func (h *Handler) handleRealtime(c echo.Context) error {
	ws, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		slog.Error(
			"Failed to upgrade WebSocket",
			slog.String("error", err.Error()),
			slog.String("module", "socket"),
		)
		return err
	}
	defer func() {
		ws.Close()
	}()

	ctx := c.Request().Context()

	input := make(chan []string)
	defer close(input)
	output := make(chan banibs.Event)

	go h.signal.Realtime(ctx, input, output)

	quit := make(chan struct{})

	go func() {
		for {
			var req realtimeRequest
			err := ws.ReadJSON(&req)
			if err != nil {
				wsErr, ok := err.(*websocket.CloseError)
				if ok {
					if !(wsErr.Code == websocket.CloseNormalClosure || wsErr.Code == websocket.CloseGoingAway) {
						slog.DebugContext(
							ctx, "WebSocket closed",
							slog.String("error", wsErr.Error()),
							slog.String("module", "socket"),
						)
					}
				} else {
					slog.ErrorContext(
						ctx, "Error reading message",
						slog.String("error", err.Error()),
						slog.String("module", "socket"),
					)
				}

				quit <- struct{}{}
				break
			}

			switch req.Type {
			case "listen":
				input <- req.Channels
			case "h": // heartbeat
				// do nothing
			default:
				slog.InfoContext(
					ctx, "Unknown request type",
					slog.String("type", req.Type),
					slog.String("module", "socket"),
				)
			}
		}
	}()

	for {
		select {
		case <-quit:
			return nil
		case <-ctx.Done():
			return nil
		case event := <-output:
			if err := ws.WriteJSON(event); err != nil {
				slog.ErrorContext(
					ctx, "Error writing message",
					slog.String("error", err.Error()),
					slog.String("module", "socket"),
				)
				return nil
			}
		}
	}
}
