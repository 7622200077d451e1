package notification

import (
	"context"
	"log"
	"net/http"

	"github.com/SherClockHolmes/webpush-go"

	"massage-board-backend/internal/model"
)

// NotificationSender defines the interface for sending a web push notification.
type NotificationSender interface {
	Send(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error)
}

// WebPushSender is a real implementation of NotificationSender using the webpush library.
type WebPushSender struct{}

// Send sends a notification using the webpush library.
func (s *WebPushSender) Send(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error) {
	return webpush.SendNotification(payload, sub, options)
}

// SubscriptionStore is the part of the store the pool reads and prunes.
type SubscriptionStore interface {
	SubscriptionsForWorker(ctx context.Context, worker string) ([]model.PushSubscription, error)
	DeleteSubscription(ctx context.Context, endpoint string) error
}

// Job asks the pool to notify everyone following a worker's column.
type Job struct {
	Worker  string
	Message string
}

// Dispatcher queues notification jobs.
type Dispatcher interface {
	Dispatch(job Job)
}

// WorkerPool manages a pool of workers for sending notifications.
type WorkerPool struct {
	size    int
	jobs    chan Job
	store   SubscriptionStore
	webpush *webpush.Options
	sender  NotificationSender
}

// NewWorkerPool creates a new worker pool.
func NewWorkerPool(size int, s SubscriptionStore, webpushOptions *webpush.Options) *WorkerPool {
	return &WorkerPool{
		size:    size,
		jobs:    make(chan Job, size*16), // Buffered channel
		store:   s,
		webpush: webpushOptions,
		sender:  &WebPushSender{}, // Use the real sender by default
	}
}

// Start launches the worker goroutines.
func (wp *WorkerPool) Start(ctx context.Context) {
	for i := 0; i < wp.size; i++ {
		go wp.worker(ctx, i)
	}
}

// worker is the actual worker goroutine.
func (wp *WorkerPool) worker(ctx context.Context, id int) {
	log.Printf("Worker %d started", id)
	for {
		select {
		case job := <-wp.jobs:
			wp.sendNotificationsForWorker(ctx, job)
		case <-ctx.Done():
			log.Printf("Worker %d shutting down", id)
			return
		}
	}
}

// Dispatch queues a job. Jobs are dropped when the queue is full so a slow
// push service never stalls a request.
func (wp *WorkerPool) Dispatch(job Job) {
	select {
	case wp.jobs <- job:
	default:
		log.Printf("Notification queue full, dropping job for %s", job.Worker)
	}
}

// Jobs returns the jobs channel for testing.
func (wp *WorkerPool) Jobs() chan Job {
	return wp.jobs
}

func (wp *WorkerPool) sendNotificationsForWorker(ctx context.Context, job Job) {
	subscriptions, err := wp.store.SubscriptionsForWorker(ctx, job.Worker)
	if err != nil {
		log.Printf("Error fetching subscriptions for worker %s: %v", job.Worker, err)
		return
	}
	if len(subscriptions) == 0 {
		return
	}

	log.Printf("Sending %d notifications for worker %s", len(subscriptions), job.Worker)
	for _, sub := range subscriptions {
		wp.sendNotification(ctx, sub, []byte(job.Message))
	}
}

// sendNotification sends a single web push notification.
func (wp *WorkerPool) sendNotification(ctx context.Context, sub model.PushSubscription, payload []byte) {
	wpSub := &webpush.Subscription{
		Endpoint: sub.Endpoint,
		Keys: webpush.Keys{
			P256dh: sub.P256DH,
			Auth:   sub.Auth,
		},
	}

	resp, err := wp.sender.Send(payload, wpSub, wp.webpush)
	if err != nil {
		log.Printf("Error sending notification to %s: %v", sub.Endpoint, err)
		return
	}
	defer resp.Body.Close()

	// Handle expired subscriptions
	if resp.StatusCode == http.StatusGone {
		log.Printf("Subscription for endpoint %s is expired. Deleting.", sub.Endpoint)
		if err := wp.store.DeleteSubscription(ctx, sub.Endpoint); err != nil {
			log.Printf("Failed to delete expired subscription %s: %v", sub.Endpoint, err)
		}
	}
}
