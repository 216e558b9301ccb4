package main

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	lambdasdk "github.com/aws/aws-sdk-go-v2/service/lambda"
	"github.com/aws/aws-sdk-go-v2/service/lambda/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/pricofy/deepl-component/internal/component"
	"github.com/pricofy/deepl-component/internal/handler"
	"github.com/pricofy/deepl-component/internal/translator"
)

type fakeInvoker struct {
	mu     sync.Mutex
	inputs []*lambdasdk.InvokeInput
	err    error
}

func (f *fakeInvoker) Invoke(_ context.Context, params *lambdasdk.InvokeInput, _ ...func(*lambdasdk.Options)) (*lambdasdk.InvokeOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.inputs = append(f.inputs, params)
	if f.err != nil {
		return nil, f.err
	}
	return &lambdasdk.InvokeOutput{StatusCode: 202}, nil
}

func newTestWarmer(t *testing.T, functionName string, inv *fakeInvoker) *warmer {
	w := newWarmer(functionName, zaptest.NewLogger(t).Sugar())
	w.delay = 0
	w.newInvoker = func(context.Context) (invoker, error) { return inv, nil }
	return w
}

func TestIsWarmupEvent(t *testing.T) {
	tests := []struct {
		name        string
		event       string
		expectOK    bool
		concurrency int
	}{
		{"plain warmup", `{"source":"warmup"}`, true, 0},
		{"warmup with concurrency", `{"source":"warmup","concurrency":3}`, true, 3},
		{"negative concurrency", `{"source":"warmup","concurrency":-2}`, true, 0},
		{"concurrency is capped", `{"source":"warmup","concurrency":100000}`, true, MaxWarmupConcurrency},
		{"other source", `{"source":"aws.events"}`, false, 0},
		{"lifecycle event", `{"lifecycle":"process","config":{"action":"translate"}}`, false, 0},
		{"not an object", `[1,2]`, false, 0},
		{"not json", `warmup`, false, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			warmup, ok := IsWarmupEvent(json.RawMessage(tt.event))
			assert.Equal(t, tt.expectOK, ok)
			if tt.expectOK {
				assert.Equal(t, tt.concurrency, warmup.Concurrency)
			}
		})
	}
}

func TestWarmerHandle_NoFanOut(t *testing.T) {
	inv := &fakeInvoker{}
	w := newTestWarmer(t, "deepl-component-dev", inv)

	out, err := w.Handle(context.Background(), &WarmupEvent{Source: WarmupSource})
	require.NoError(t, err)

	body := out.(map[string]interface{})["body"].(WarmupResponse)
	assert.Equal(t, WarmupResponse{Status: "warm", InstancesWarmed: 1}, body)
	assert.Empty(t, inv.inputs)
}

func TestWarmerHandle_FanOut(t *testing.T) {
	inv := &fakeInvoker{}
	w := newTestWarmer(t, "deepl-component-dev", inv)

	out, err := w.Handle(context.Background(), &WarmupEvent{Source: WarmupSource, Concurrency: 3})
	require.NoError(t, err)

	body := out.(map[string]interface{})["body"].(WarmupResponse)
	assert.Equal(t, 4, body.InstancesWarmed)
	require.Len(t, inv.inputs, 3)
	for _, in := range inv.inputs {
		assert.Equal(t, "deepl-component-dev", *in.FunctionName)
		assert.Equal(t, types.InvocationTypeEvent, in.InvocationType)
		assert.JSONEq(t, `{"source":"warmup","concurrency":0}`, string(in.Payload))
	}
}

type countingInvoker struct {
	mu      sync.Mutex
	active  int
	maxSeen int
	calls   int
}

func (c *countingInvoker) Invoke(_ context.Context, _ *lambdasdk.InvokeInput, _ ...func(*lambdasdk.Options)) (*lambdasdk.InvokeOutput, error) {
	c.mu.Lock()
	c.active++
	c.calls++
	if c.active > c.maxSeen {
		c.maxSeen = c.active
	}
	c.mu.Unlock()

	time.Sleep(time.Millisecond)

	c.mu.Lock()
	c.active--
	c.mu.Unlock()
	return &lambdasdk.InvokeOutput{StatusCode: 202}, nil
}

func TestWarmerHandle_FanOutIsBounded(t *testing.T) {
	inv := &countingInvoker{}
	w := newWarmer("deepl-component", zaptest.NewLogger(t).Sugar())
	w.delay = 0
	w.newInvoker = func(context.Context) (invoker, error) { return inv, nil }

	out, err := w.Handle(context.Background(), &WarmupEvent{Source: WarmupSource, Concurrency: MaxWarmupConcurrency})
	require.NoError(t, err)

	body := out.(map[string]interface{})["body"].(WarmupResponse)
	assert.Equal(t, MaxWarmupConcurrency+1, body.InstancesWarmed)
	assert.Equal(t, MaxWarmupConcurrency, inv.calls)
	assert.LessOrEqual(t, inv.maxSeen, maxInFlightInvokes)
}

func TestWarmerHandle_FanOutFailure(t *testing.T) {
	inv := &fakeInvoker{err: errors.New("throttled")}
	w := newTestWarmer(t, "deepl-component-dev", inv)

	out, err := w.Handle(context.Background(), &WarmupEvent{Source: WarmupSource, Concurrency: 2})
	require.NoError(t, err)
	body := out.(map[string]interface{})["body"].(WarmupResponse)
	assert.Equal(t, 1, body.InstancesWarmed)
}

func TestWarmerHandle_NoFunctionName(t *testing.T) {
	inv := &fakeInvoker{}
	w := newTestWarmer(t, "", inv)

	out, err := w.Handle(context.Background(), &WarmupEvent{Source: WarmupSource, Concurrency: 2})
	require.NoError(t, err)
	body := out.(map[string]interface{})["body"].(WarmupResponse)
	assert.Equal(t, 1, body.InstancesWarmed)
	assert.Empty(t, inv.inputs)
}

func TestHandleRequest(t *testing.T) {
	log := zaptest.NewLogger(t).Sugar()
	factory := func(apiKey string) (translator.Translator, error) {
		return nil, errors.New("unexpected translator construction")
	}
	h := handler.New(component.New(factory), log)
	w := newTestWarmer(t, "fn", &fakeInvoker{})

	out, err := handleRequest(context.Background(), json.RawMessage(`{"source":"warmup"}`), h, w, log)
	require.NoError(t, err)
	assert.Contains(t, out.(map[string]interface{}), "statusCode")

	out, err = handleRequest(context.Background(), json.RawMessage(`{"config":{"action":"translate","args":{"message":"Hi","target":"DE"}}}`), h, w, log)
	require.NoError(t, err)
	assert.Nil(t, out.(*handler.Response).Result)

	_, err = handleRequest(context.Background(), json.RawMessage(`"nope"`), h, w, log)
	assert.Error(t, err)
}
