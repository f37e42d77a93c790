package poll

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestUntilImmediate(t *testing.T) {
	config := Config{
		Interval: 10 * time.Millisecond,
		Timeout:  1 * time.Second,
	}

	callCount := 0
	probe := func(ctx context.Context) (string, bool, error) {
		callCount++
		return "done", true, nil
	}

	result, err := Until(context.Background(), config, probe)
	if err != nil {
		t.Errorf("Expected no error, got %v", err)
	}
	if result != "done" {
		t.Errorf("Expected 'done', got %s", result)
	}
	if callCount != 1 {
		t.Errorf("Expected 1 call, got %d", callCount)
	}
}

func TestUntilEventually(t *testing.T) {
	config := Config{
		Interval: 10 * time.Millisecond,
		Timeout:  1 * time.Second,
	}

	callCount := 0
	probe := func(ctx context.Context) (string, bool, error) {
		callCount++
		if callCount < 3 {
			return "", false, nil
		}
		return "done", true, nil
	}

	result, err := Until(context.Background(), config, probe)
	if err != nil {
		t.Errorf("Expected no error, got %v", err)
	}
	if result != "done" {
		t.Errorf("Expected 'done', got %s", result)
	}
	if callCount != 3 {
		t.Errorf("Expected 3 calls, got %d", callCount)
	}
}

func TestUntilTimeout(t *testing.T) {
	config := Config{
		Interval: 5 * time.Millisecond,
		Timeout:  25 * time.Millisecond,
	}

	probe := func(ctx context.Context) (string, bool, error) {
		return "", false, nil
	}

	_, err := Until(context.Background(), config, probe)
	if err == nil {
		t.Error("Expected timeout error, got nil")
	}
}

func TestUntilProbeError(t *testing.T) {
	config := Config{
		Interval: 10 * time.Millisecond,
		Timeout:  1 * time.Second,
	}

	callCount := 0
	probe := func(ctx context.Context) (string, bool, error) {
		callCount++
		return "", false, errors.New("remote failure")
	}

	_, err := Until(context.Background(), config, probe)
	if err == nil {
		t.Error("Expected error, got nil")
	}
	if callCount != 1 {
		t.Errorf("Expected probe error to end the wait after 1 call, got %d", callCount)
	}
}

func TestUntilContextCancellation(t *testing.T) {
	config := Config{
		Interval: 50 * time.Millisecond,
		Timeout:  5 * time.Second,
	}

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	probe := func(ctx context.Context) (string, bool, error) {
		return "", false, nil
	}

	_, err := Until(ctx, config, probe)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled, got %v", err)
	}
}
