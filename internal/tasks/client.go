package tasks

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"path/filepath"
	"strings"
	"sync/atomic"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/mikestefanello/backlite"
)

// Client runs the cleanup queues on backlite. Tasks live in a SQLite file of
// their own, whatever driver serves the shop's main store.
type Client struct {
	queue   *backlite.Client
	db      *sql.DB
	config  Config
	running atomic.Bool
}

// QueueDBPath derives the queue file from the main database path:
// "data/shop.db" becomes "data/shop-tasks.db".
func QueueDBPath(mainDBPath string) string {
	ext := filepath.Ext(mainDBPath)
	return strings.TrimSuffix(mainDBPath, ext) + "-tasks" + ext
}

func openQueueDB(path string, workers int) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", path+"?_journal=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, err
	}
	// every worker holds a connection while it runs; the rest serve dispatch
	db.SetMaxOpenConns(workers + 5)
	db.SetMaxIdleConns(workers + 2)
	db.SetConnMaxLifetime(time.Hour)
	return db, nil
}

func NewClient(mainDBPath string, cfg Config) (*Client, error) {
	cfg = cfg.withDefaults()

	db, err := openQueueDB(QueueDBPath(mainDBPath), cfg.Workers)
	if err != nil {
		return nil, fmt.Errorf("failed to open tasks database: %w", err)
	}

	queue, err := backlite.NewClient(backlite.ClientConfig{
		DB:              db,
		NumWorkers:      cfg.Workers,
		ReleaseAfter:    cfg.ReleaseAfter,
		CleanupInterval: cfg.CleanupInterval,
		Logger:          queueLogger{},
	})
	if err == nil {
		err = queue.Install()
	}
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to set up task queue: %w", err)
	}

	return &Client{queue: queue, db: db, config: cfg}, nil
}

// Register adds queues. Call it before Start.
func (c *Client) Register(queues ...backlite.Queue) {
	for _, q := range queues {
		c.queue.Register(q)
	}
}

// SweepTasks returns the cleanup tasks parameterised from the client's config.
func (c *Client) SweepTasks() []backlite.Task {
	return c.config.SweepTasks()
}

// Start dispatches tasks to the workers until Stop. Repeated calls are no-ops.
func (c *Client) Start(ctx context.Context) {
	if !c.running.CompareAndSwap(false, true) {
		return
	}
	log.Printf("[TASK] Queue started with %d workers", c.config.Workers)
	c.queue.Start(ctx)
}

// Stop waits for running tasks until ctx expires and reports whether they
// all finished.
func (c *Client) Stop(ctx context.Context) bool {
	if !c.running.CompareAndSwap(true, false) {
		return true
	}
	if !c.queue.Stop(ctx) {
		log.Println("[TASK] Queue stop timed out, a sweep may have been interrupted")
		return false
	}
	log.Println("[TASK] Queue stopped")
	return true
}

// Running reports whether Start has been called without a matching Stop.
func (c *Client) Running() bool {
	return c.running.Load()
}

// Ping fails when the queue file is unreachable or the dispatcher is stopped.
func (c *Client) Ping(ctx context.Context) error {
	if !c.Running() {
		return errors.New("queue not running")
	}
	return c.db.PingContext(ctx)
}

// Close releases the queue database. Call it after Stop.
func (c *Client) Close() error {
	return c.db.Close()
}

// Enqueue saves tasks and returns their ids.
func (c *Client) Enqueue(tasks ...backlite.Task) ([]string, error) {
	return c.queue.Add(tasks...).Save()
}

func (c *Client) Status(ctx context.Context, taskID string) (backlite.TaskStatus, error) {
	return c.queue.Status(ctx, taskID)
}

type queueLogger struct{}

func (queueLogger) Info(message string, params ...any) {
	log.Printf("[TASK] "+message, params...)
}

func (queueLogger) Error(message string, params ...any) {
	log.Printf("[TASK ERROR] "+message, params...)
}
