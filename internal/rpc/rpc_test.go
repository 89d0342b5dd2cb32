package rpc

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/banshee-data/atmosphere/internal/atmosphere"
)

func startTestService(t *testing.T) *Client {
	t.Helper()
	l, err := Listen("127.0.0.1:0", NewServer(atmosphere.Standard(), 20000, 5))
	require.NoError(t, err)
	t.Cleanup(l.Stop)

	client, conn, err := Dial(l.Addr().String())
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return client
}

func testContext(t *testing.T) context.Context {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	t.Cleanup(cancel)
	return ctx
}

func TestConditions(t *testing.T) {
	client := startTestService(t)
	ctx := testContext(t)

	want, err := atmosphere.Standard().Conditions(11000)
	require.NoError(t, err)

	got, err := client.Conditions(ctx, 11000)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestConditions_OutOfRange(t *testing.T) {
	client := startTestService(t)

	_, err := client.Conditions(testContext(t), -10)
	assert.ErrorIs(t, err, atmosphere.ErrOutOfRange)
}

func TestLayers(t *testing.T) {
	client := startTestService(t)

	got, err := client.Layers(testContext(t))
	require.NoError(t, err)
	assert.Equal(t, atmosphere.StandardLayers().Layers(), got)
}

func TestProfile(t *testing.T) {
	client := startTestService(t)
	ctx := testContext(t)

	want, err := atmosphere.Standard().SampleProfile(atmosphere.QuantityDensity, 30000, 7)
	require.NoError(t, err)

	got, err := client.Profile(ctx, atmosphere.QuantityDensity, 30000, 7)
	require.NoError(t, err)
	assert.Equal(t, want, got)

	_, err = client.Profile(ctx, atmosphere.QuantityDensity, 30000, 0)
	assert.ErrorIs(t, err, atmosphere.ErrInvalidProfile)
}

func TestPressureAltitude(t *testing.T) {
	client := startTestService(t)
	ctx := testContext(t)

	p, err := atmosphere.Pressure(25000)
	require.NoError(t, err)
	alt, err := client.PressureAltitude(ctx, p)
	require.NoError(t, err)
	assert.InDelta(t, 25000, alt, 1e-6)

	_, err = client.PressureAltitude(ctx, 2e5)
	assert.ErrorIs(t, err, atmosphere.ErrOutOfRange)
}

func TestStreamProfile(t *testing.T) {
	client := startTestService(t)
	ctx := testContext(t)

	want, err := atmosphere.Standard().SampleProfile(atmosphere.QuantitySpeedOfSound, 50000, 11)
	require.NoError(t, err)

	var got []atmosphere.ProfilePoint
	err = client.StreamProfile(ctx, atmosphere.QuantitySpeedOfSound, 50000, 11, func(p atmosphere.ProfilePoint) error {
		got = append(got, p)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestStreamProfile_StopsOnCallbackError(t *testing.T) {
	client := startTestService(t)
	stop := errors.New("enough")

	n := 0
	err := client.StreamProfile(testContext(t), atmosphere.QuantityPressure, 80000, 100, func(atmosphere.ProfilePoint) error {
		n++
		if n == 3 {
			return stop
		}
		return nil
	})
	assert.ErrorIs(t, err, stop)
	assert.Equal(t, 3, n)
}

func TestStreamProfile_Invalid(t *testing.T) {
	client := startTestService(t)

	err := client.StreamProfile(testContext(t), atmosphere.QuantityPressure, -5, 10, func(atmosphere.ProfilePoint) error {
		t.Fatal("no samples expected")
		return nil
	})
	assert.ErrorIs(t, err, atmosphere.ErrInvalidProfile)
}

func TestServer_ProfileDefaultsAndStatus(t *testing.T) {
	s := NewServer(atmosphere.Standard(), 0, 0)
	assert.Equal(t, atmosphere.StandardLayers().Ceiling(), s.maxAltitude)
	assert.Equal(t, 200, s.count)

	req, err := structpb.NewStruct(map[string]interface{}{"quantity": "temperature"})
	require.NoError(t, err)
	list, err := s.Profile(context.Background(), req)
	require.NoError(t, err)
	assert.Len(t, list.GetValues(), 200)

	req, err = structpb.NewStruct(map[string]interface{}{"quantity": "humidity"})
	require.NoError(t, err)
	_, err = s.Profile(context.Background(), req)
	assert.Equal(t, codes.InvalidArgument, status.Code(err))

	_, err = s.Conditions(context.Background(), wrapperspb.Double(-1))
	assert.Equal(t, codes.OutOfRange, status.Code(err))
}

func TestServer_ProfileRejectsBadCount(t *testing.T) {
	s := NewServer(atmosphere.Standard(), 0, 0)

	tests := []struct {
		name  string
		count float64
	}{
		{"huge", 1e15},
		{"above limit", atmosphere.MaxProfileSamples + 1},
		{"fractional", 2.5},
		{"zero", 0},
		{"negative", -4},
		{"nan", math.NaN()},
		{"inf", math.Inf(1)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := &structpb.Struct{Fields: map[string]*structpb.Value{
				"quantity":     structpb.NewStringValue("temperature"),
				"max_altitude": structpb.NewNumberValue(1000),
				"count":        structpb.NewNumberValue(tt.count),
			}}
			_, err := s.Profile(context.Background(), req)
			assert.Equal(t, codes.InvalidArgument, status.Code(err))
		})
	}
}

func TestStreamProfile_HugeCount(t *testing.T) {
	client := startTestService(t)

	err := client.StreamProfile(testContext(t), atmosphere.QuantityPressure, 1000, 1<<40, func(atmosphere.ProfilePoint) error {
		return nil
	})
	assert.ErrorIs(t, err, atmosphere.ErrInvalidProfile)
}

func TestToStatus(t *testing.T) {
	assert.Equal(t, codes.Internal, status.Code(toStatus(errors.New("boom"))))
	assert.Equal(t, codes.OutOfRange, status.Code(toStatus(&atmosphere.OutOfRangeError{Input: "altitude", Value: -1})))
}

func TestListener_StopIsIdempotent(t *testing.T) {
	l, err := Listen("127.0.0.1:0", NewServer(atmosphere.Standard(), 0, 0))
	require.NoError(t, err)
	l.Stop()
	l.Stop()
}
