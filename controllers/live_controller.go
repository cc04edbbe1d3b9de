package controllers

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"toolboard/models"
	"toolboard/realtime"
	"toolboard/services"
	"toolboard/utils"
)

// LiveController serves the in-memory realtime collections: snapshot reads
// that never touch the backend once loaded, and an SSE stream of raw change
// events for browser sessions.
type LiveController struct {
	bus        realtime.Bus
	links      *realtime.Collection[models.AutomationLink]
	categories *realtime.Collection[models.Category]
	users      *realtime.Collection[models.User]
	stats      *realtime.Feed[services.DashboardStats]
}

func NewLiveController(
	bus realtime.Bus,
	links *realtime.Collection[models.AutomationLink],
	categories *realtime.Collection[models.Category],
	users *realtime.Collection[models.User],
	stats *realtime.Feed[services.DashboardStats],
) *LiveController {
	return &LiveController{bus: bus, links: links, categories: categories, users: users, stats: stats}
}

// Links serves the current link snapshot.
func (l *LiveController) Links(ctx *gin.Context) {
	if err := l.links.Err(); err != nil {
		utils.Error(ctx, http.StatusServiceUnavailable, 50300, err.Error())
		return
	}
	utils.Success(ctx, gin.H{"links": l.links.Snapshot(), "loading": l.links.Loading()})
}

// Categories serves the current category snapshot.
func (l *LiveController) Categories(ctx *gin.Context) {
	if err := l.categories.Err(); err != nil {
		utils.Error(ctx, http.StatusServiceUnavailable, 50301, err.Error())
		return
	}
	utils.Success(ctx, gin.H{"categories": l.categories.Snapshot(), "loading": l.categories.Loading()})
}

// Users serves the current user snapshot.
func (l *LiveController) Users(ctx *gin.Context) {
	if err := l.users.Err(); err != nil {
		utils.Error(ctx, http.StatusServiceUnavailable, 50302, err.Error())
		return
	}
	utils.Success(ctx, gin.H{"users": l.users.Snapshot(), "loading": l.users.Loading()})
}

// Stats serves the current dashboard aggregate.
func (l *LiveController) Stats(ctx *gin.Context) {
	if err := l.stats.Err(); err != nil {
		utils.Error(ctx, http.StatusServiceUnavailable, 50303, err.Error())
		return
	}
	utils.Success(ctx, gin.H{"stats": l.stats.Value(), "loading": l.stats.Loading()})
}

// Refetch reloads every collection wholesale, the manual recovery path for
// missed events.
func (l *LiveController) Refetch(ctx *gin.Context) {
	for _, err := range []error{
		l.links.Refetch(ctx),
		l.categories.Refetch(ctx),
		l.users.Refetch(ctx),
		l.stats.Refetch(ctx),
	} {
		if err != nil {
			serviceError(ctx, err)
			return
		}
	}
	utils.Success(ctx, nil)
}

// Events streams change events to the client over SSE until it disconnects.
// An optional table query parameter narrows the stream to one topic.
func (l *LiveController) Events(ctx *gin.Context) {
	tables := []string{
		realtime.TableLinks,
		realtime.TableCategories,
		realtime.TableUsers,
		realtime.TableClickAnalytics,
	}
	if t := ctx.Query("table"); t != "" {
		tables = []string{t}
	}

	// Slow consumers drop events instead of blocking the bus; the client
	// recovers with a refetch, same as any missed delivery.
	ch := make(chan realtime.Event, 16)
	subs := make([]realtime.Subscription, 0, len(tables))
	for _, table := range tables {
		subs = append(subs, l.bus.Subscribe(table, func(ev realtime.Event) {
			select {
			case ch <- ev:
			default:
			}
		}))
	}
	defer func() {
		for _, s := range subs {
			s.Unsubscribe()
		}
	}()

	ctx.Writer.Header().Set("Content-Type", "text/event-stream")
	ctx.Writer.Header().Set("Cache-Control", "no-cache")
	ctx.Writer.Header().Set("Connection", "keep-alive")

	ctx.Stream(func(w io.Writer) bool {
		select {
		case ev := <-ch:
			ctx.SSEvent("change", ev)
			return true
		case <-ctx.Request.Context().Done():
			return false
		}
	})
}
