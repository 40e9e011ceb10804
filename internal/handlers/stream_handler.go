package handlers

import (
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "danaku/internal/errors"
	"danaku/internal/ledger"
	"danaku/internal/logger"
	"danaku/internal/services"
)

const defaultHeartbeat = 25 * time.Second

// Subscriber is the part of the ledger store the stream needs.
type Subscriber interface {
	Subscribe(userID string, collections ...ledger.Collection) *ledger.Subscription
}

// StreamHandler pushes fresh collection snapshots to the client over
// server-sent events whenever a committed transaction touches them.
type StreamHandler struct {
	subscriber Subscriber
	snapshots  services.SnapshotServicer
	heartbeat  time.Duration
}

// NewStreamHandler creates a new StreamHandler.
func NewStreamHandler(subscriber Subscriber, snapshots services.SnapshotServicer) *StreamHandler {
	return &StreamHandler{subscriber: subscriber, snapshots: snapshots, heartbeat: defaultHeartbeat}
}

func parseCollections(raw string) ([]ledger.Collection, error) {
	if raw == "" {
		return ledger.Collections, nil
	}
	var out []ledger.Collection
	seen := make(map[ledger.Collection]bool)
	for _, name := range strings.Split(raw, ",") {
		c, ok := ledger.ParseCollection(strings.TrimSpace(name))
		if !ok {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "unknown collection "+name)
		}
		if !seen[c] {
			seen[c] = true
			out = append(out, c)
		}
	}
	return out, nil
}

// Stream subscribes to the user's collections
// @Summary     Live collection updates
// @Description Server-sent events. One event per collection on connect, then one each time a committed change touches it. The event name is the collection and the data its full JSON contents. The access token may be passed as the access_token query parameter.
// @Tags        stream
// @Produce     text/event-stream
// @Security    BearerAuth
// @Param       collections query string false "Comma-separated: wallets,transactions,savings (default all)"
// @Success     200 {string} string "event stream"
// @Failure     400 {object} ErrorResponse "Unknown collection"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Router      /stream [get]
func (h *StreamHandler) Stream(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	collections, err := parseCollections(c.Query("collections"))
	if err != nil {
		respondWithError(c, err)
		return
	}

	log := logger.Named("stream")
	ctx := c.Request.Context()

	// Subscribe before the first snapshot so no commit falls in between.
	sub := h.subscriber.Subscribe(userID, collections...)
	defer sub.Close()

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")
	c.Status(http.StatusOK)

	send := func(collection ledger.Collection) bool {
		data, err := h.snapshots.Snapshot(ctx, userID, collection)
		if err != nil {
			log.Warnw("snapshot failed", "user_id", userID, "collection", collection, "error", err)
			c.SSEvent("error", gin.H{"collection": collection, "code": apperrors.Code(err)})
			return ctx.Err() == nil
		}
		c.SSEvent(string(collection), data)
		return true
	}

	for _, collection := range collections {
		if !send(collection) {
			return
		}
	}
	c.Writer.Flush()

	heartbeat := time.NewTicker(h.heartbeat)
	defer heartbeat.Stop()

	c.Stream(func(_ io.Writer) bool {
		select {
		case <-ctx.Done():
			return false
		case _, ok := <-sub.C:
			if !ok {
				return false
			}
			for _, change := range sub.Changes() {
				if !send(change.Collection) {
					return false
				}
			}
			return true
		case <-heartbeat.C:
			c.SSEvent("ping", time.Now().UTC().Format(time.RFC3339))
			return true
		}
	})
}
