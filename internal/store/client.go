// Package store persists sheet snapshots to Redis and fans out cell
// events over Pub/Sub. Only raw values are stored; computed values are
// rebuilt by the engine on load.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/redis/go-redis/v9"

	"github.com/dsdsmelo/gridnote/pkg/sheet"
)

// Client provides project-scoped Redis operations for sheet storage.
// All keys and channels are automatically namespaced with the project name.
// The client is thread-safe and can be used concurrently from multiple goroutines.
type Client struct {
	rdb     *redis.Client
	project string
}

// NewClient creates a new store client for the specified project.
// The client automatically namespaces all keys and channels with the
// project name. Returns an error if project is empty.
func NewClient(redisOpts *redis.Options, project string) (*Client, error) {
	if project == "" {
		return nil, fmt.Errorf("project name cannot be empty")
	}

	return &Client{
		rdb:     redis.NewClient(redisOpts),
		project: project,
	}, nil
}

// Close closes the Redis connection. Implements io.Closer.
func (c *Client) Close() error {
	return c.rdb.Close()
}

// Ping verifies Redis connectivity. Useful for health checks.
func (c *Client) Ping(ctx context.Context) error {
	return c.rdb.Ping(ctx).Err()
}

// SaveSheet writes a full sheet snapshot to Redis. Validates the snapshot
// before writing and replaces any previous state for the same sheet ID in
// one pipelined transaction. Idempotent: saving the same snapshot twice
// is safe.
func (c *Client) SaveSheet(ctx context.Context, snap *sheet.Snapshot) error {
	if err := snap.Validate(); err != nil {
		return fmt.Errorf("invalid snapshot: %w", err)
	}

	columnsJSON, err := marshalList(snap.Columns)
	if err != nil {
		return fmt.Errorf("failed to serialize columns: %w", err)
	}
	rowsJSON, err := marshalList(snap.Rows)
	if err != nil {
		return fmt.Errorf("failed to serialize rows: %w", err)
	}
	mergesJSON, err := marshalList(snap.Merges)
	if err != nil {
		return fmt.Errorf("failed to serialize merges: %w", err)
	}
	cellsHash, err := CellsToHash(snap.Cells)
	if err != nil {
		return fmt.Errorf("failed to serialize cells: %w", err)
	}

	id := snap.Meta.ID
	pipe := c.rdb.TxPipeline()
	pipe.HSet(ctx, SheetKey(c.project, id), SheetToHash(&snap.Meta))
	pipe.Set(ctx, SheetColumnsKey(c.project, id), columnsJSON, 0)
	pipe.Set(ctx, SheetRowsKey(c.project, id), rowsJSON, 0)
	pipe.Set(ctx, SheetMergesKey(c.project, id), mergesJSON, 0)
	pipe.Del(ctx, SheetCellsKey(c.project, id))
	if len(cellsHash) > 0 {
		pipe.HSet(ctx, SheetCellsKey(c.project, id), cellsHash)
	}
	pipe.SAdd(ctx, SheetIndexKey(c.project), id)

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to write sheet to Redis: %w", err)
	}
	return nil
}

// LoadSheet retrieves a full sheet snapshot by ID.
// Returns (nil, redis.Nil) if the sheet doesn't exist.
// Use IsNotFound() to check for not-found errors.
func (c *Client) LoadSheet(ctx context.Context, sheetID string) (*sheet.Snapshot, error) {
	metaHash, err := c.rdb.HGetAll(ctx, SheetKey(c.project, sheetID)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet from Redis: %w", err)
	}

	// HGetAll returns an empty map for non-existent keys
	if len(metaHash) == 0 {
		return nil, redis.Nil
	}

	meta, err := HashToSheet(metaHash)
	if err != nil {
		return nil, fmt.Errorf("failed to deserialize sheet: %w", err)
	}

	snap := &sheet.Snapshot{Meta: *meta}

	columnsJSON, err := c.rdb.Get(ctx, SheetColumnsKey(c.project, sheetID)).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("failed to read columns: %w", err)
	}
	if columnsJSON != "" {
		if err := json.Unmarshal([]byte(columnsJSON), &snap.Columns); err != nil {
			return nil, fmt.Errorf("failed to unmarshal columns: %w", err)
		}
	}

	rowsJSON, err := c.rdb.Get(ctx, SheetRowsKey(c.project, sheetID)).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("failed to read rows: %w", err)
	}
	if rowsJSON != "" {
		if err := json.Unmarshal([]byte(rowsJSON), &snap.Rows); err != nil {
			return nil, fmt.Errorf("failed to unmarshal rows: %w", err)
		}
	}

	mergesJSON, err := c.rdb.Get(ctx, SheetMergesKey(c.project, sheetID)).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("failed to read merges: %w", err)
	}
	if mergesJSON != "" {
		if err := json.Unmarshal([]byte(mergesJSON), &snap.Merges); err != nil {
			return nil, fmt.Errorf("failed to unmarshal merges: %w", err)
		}
	}

	cellsHash, err := c.rdb.HGetAll(ctx, SheetCellsKey(c.project, sheetID)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read cells: %w", err)
	}
	cells, err := HashToCells(cellsHash)
	if err != nil {
		return nil, fmt.Errorf("failed to deserialize cells: %w", err)
	}
	snap.Cells = cells

	return snap, nil
}

// DeleteSheet removes a sheet and all its associated keys.
// Deleting a non-existent sheet is not an error.
func (c *Client) DeleteSheet(ctx context.Context, sheetID string) error {
	pipe := c.rdb.TxPipeline()
	pipe.Del(ctx,
		SheetKey(c.project, sheetID),
		SheetColumnsKey(c.project, sheetID),
		SheetRowsKey(c.project, sheetID),
		SheetMergesKey(c.project, sheetID),
		SheetCellsKey(c.project, sheetID),
	)
	pipe.SRem(ctx, SheetIndexKey(c.project), sheetID)

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to delete sheet from Redis: %w", err)
	}
	return nil
}

// ListSheetIDs returns the IDs of every sheet in the project, sorted.
// Returns an empty slice if the project has no sheets.
func (c *Client) ListSheetIDs(ctx context.Context) ([]string, error) {
	ids, err := c.rdb.SMembers(ctx, SheetIndexKey(c.project)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list sheets from Redis: %w", err)
	}
	sort.Strings(ids)
	return ids, nil
}

// SheetExists checks if a sheet exists without fetching it.
// More efficient than LoadSheet when you only need to check existence.
func (c *Client) SheetExists(ctx context.Context, sheetID string) (bool, error) {
	exists, err := c.rdb.Exists(ctx, SheetKey(c.project, sheetID)).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check sheet existence: %w", err)
	}
	return exists > 0, nil
}

// CellEvent is published to the project's cell_events channel after a
// recomputation so watchers can render updated values without reloading.
type CellEvent struct {
	SheetID     string `json:"sheet_id"`
	RowID       string `json:"row_id"`
	ColumnID    string `json:"column_id"`
	Raw         string `json:"raw"`
	Computed    string `json:"computed"`
	UpdatedAtMs int64  `json:"updated_at_ms"`
}

// PublishCellEvent publishes a cell change to the project's cell_events
// channel. Delivery is at-most-once; watchers that miss events reload.
func (c *Client) PublishCellEvent(ctx context.Context, event *CellEvent) error {
	eventJSON, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal cell event: %w", err)
	}

	channel := CellEventsChannel(c.project)
	if err := c.rdb.Publish(ctx, channel, eventJSON).Err(); err != nil {
		return fmt.Errorf("failed to publish cell event: %w", err)
	}
	return nil
}

// CellSubscription represents an active Pub/Sub subscription to cell events.
// Caller must call Close() when done to clean up resources.
type CellSubscription struct {
	events <-chan *CellEvent
	errors <-chan error
	cancel func()
	once   sync.Once
}

// Events returns the channel of cell events.
// The channel is closed when the subscription is closed or the context is cancelled.
func (s *CellSubscription) Events() <-chan *CellEvent {
	return s.events
}

// Errors returns the channel of subscription errors.
// Errors include JSON unmarshaling failures and other non-fatal issues.
// The subscription continues after errors - messages are skipped.
func (s *CellSubscription) Errors() <-chan error {
	return s.errors
}

// Close stops the subscription and cleans up resources. Implements io.Closer.
// Safe to call multiple times - subsequent calls are no-ops.
func (s *CellSubscription) Close() error {
	s.once.Do(s.cancel)
	return nil
}

// SubscribeCellEvents subscribes to cell change events for this project.
// Returns a CellSubscription that delivers full cell events.
// Caller must call subscription.Close() when done.
// Context cancellation also stops the subscription.
//
// Events are delivered on a buffered channel (size 10) to prevent blocking.
// If the subscriber is too slow, events may be dropped by Redis Pub/Sub
// (at-most-once delivery).
func (c *Client) SubscribeCellEvents(ctx context.Context) (*CellSubscription, error) {
	channel := CellEventsChannel(c.project)
	pubsub := c.rdb.Subscribe(ctx, channel)

	eventsChan := make(chan *CellEvent, 10)
	errorsChan := make(chan error, 10)

	subCtx, cancelFunc := context.WithCancel(ctx)

	go func() {
		defer close(eventsChan)
		defer close(errorsChan)
		defer pubsub.Close()

		ch := pubsub.Channel()

		for {
			select {
			case <-subCtx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}

				var event CellEvent
				if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
					select {
					case errorsChan <- fmt.Errorf("failed to unmarshal cell event: %w", err):
					case <-subCtx.Done():
						return
					}
					continue
				}

				select {
				case eventsChan <- &event:
				case <-subCtx.Done():
					return
				}
			}
		}
	}()

	return &CellSubscription{
		events: eventsChan,
		errors: errorsChan,
		cancel: cancelFunc,
	}, nil
}

// IsNotFound returns true if the error is a Redis "key not found" error
// (redis.Nil). Use this to check if LoadSheet returned "not found".
func IsNotFound(err error) bool {
	return errors.Is(err, redis.Nil)
}
