package main

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	lambdasdk "github.com/aws/aws-sdk-go-v2/service/lambda"
	"github.com/aws/aws-sdk-go-v2/service/lambda/types"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	// WarmupSource identifies warmup events from the scheduler.
	WarmupSource = "warmup"

	// WarmupDelay keeps this instance busy long enough for the self
	// invocations to land on other instances.
	WarmupDelay = 75 * time.Millisecond

	// MaxWarmupConcurrency caps the self invocations one ping may request.
	MaxWarmupConcurrency = 50

	// maxInFlightInvokes bounds concurrent Invoke calls during a fan-out.
	maxInFlightInvokes = 10
)

// WarmupEvent is the scheduled keep-warm payload.
type WarmupEvent struct {
	Source      string `json:"source"`
	Concurrency int    `json:"concurrency"`
}

// WarmupResponse is the reply to a warmup event.
type WarmupResponse struct {
	Status          string `json:"status"`
	InstancesWarmed int    `json:"instancesWarmed"`
}

// IsWarmupEvent reports whether event is a warmup ping.
func IsWarmupEvent(event json.RawMessage) (*WarmupEvent, bool) {
	var warmup WarmupEvent
	if err := json.Unmarshal(event, &warmup); err != nil {
		return nil, false
	}
	if warmup.Source != WarmupSource {
		return nil, false
	}
	switch {
	case warmup.Concurrency < 0:
		warmup.Concurrency = 0
	case warmup.Concurrency > MaxWarmupConcurrency:
		warmup.Concurrency = MaxWarmupConcurrency
	}
	return &warmup, true
}

// invoker is the part of the Lambda API client the warmer uses.
type invoker interface {
	Invoke(ctx context.Context, params *lambdasdk.InvokeInput, optFns ...func(*lambdasdk.Options)) (*lambdasdk.InvokeOutput, error)
}

// warmer answers warmup events and fans out self invocations.
type warmer struct {
	functionName string
	log          *zap.SugaredLogger
	newInvoker   func(ctx context.Context) (invoker, error)
	delay        time.Duration
}

func newWarmer(functionName string, log *zap.SugaredLogger) *warmer {
	return &warmer{
		functionName: functionName,
		log:          log,
		newInvoker:   defaultInvoker,
		delay:        WarmupDelay,
	}
}

func defaultInvoker(ctx context.Context) (invoker, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}
	return lambdasdk.NewFromConfig(cfg), nil
}

// Handle answers a warmup event. Self invocation failures are logged and
// only reduce the reported instance count.
func (w *warmer) Handle(ctx context.Context, warmup *WarmupEvent) (interface{}, error) {
	instancesWarmed := 1 // this instance

	if warmup.Concurrency > 0 {
		if err := w.selfInvoke(ctx, warmup.Concurrency); err != nil {
			w.log.Warnw("self invocation failed", "concurrency", warmup.Concurrency, "error", err)
		} else {
			instancesWarmed += warmup.Concurrency
		}
	}

	time.Sleep(w.delay)

	return map[string]interface{}{
		"statusCode": 200,
		"body": WarmupResponse{
			Status:          "warm",
			InstancesWarmed: instancesWarmed,
		},
	}, nil
}

// selfInvoke fires count asynchronous invocations of this function.
func (w *warmer) selfInvoke(ctx context.Context, count int) error {
	if w.functionName == "" {
		return fmt.Errorf("function name is not configured")
	}

	client, err := w.newInvoker(ctx)
	if err != nil {
		return err
	}

	// Child pings carry concurrency 0 so they do not fan out again.
	payload, err := json.Marshal(WarmupEvent{Source: WarmupSource})
	if err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxInFlightInvokes)
	for i := 0; i < count; i++ {
		g.Go(func() error {
			_, err := client.Invoke(gctx, &lambdasdk.InvokeInput{
				FunctionName:   aws.String(w.functionName),
				InvocationType: types.InvocationTypeEvent,
				Payload:        payload,
			})
			return err
		})
	}
	return g.Wait()
}
