package rpc

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net"
	"sync"
	"sync/atomic"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/banshee-data/atmosphere/internal/atmosphere"
	"github.com/banshee-data/atmosphere/internal/monitoring"
)

var logf = monitoring.Tagf("gRPC")

// Ensure Server implements the gRPC interface.
var _ AtmosphereServer = (*Server)(nil)

// Server answers atmosphere.v1.Atmosphere calls from one model.
type Server struct {
	model       *atmosphere.Model
	maxAltitude float64
	count       int
}

// NewServer creates a Server. Profile requests that omit max_altitude or
// count use maxAltitude and count.
func NewServer(m *atmosphere.Model, maxAltitude float64, count int) *Server {
	if maxAltitude <= 0 {
		maxAltitude = m.Layers().Ceiling()
	}
	if count <= 0 {
		count = 200
	}
	return &Server{model: m, maxAltitude: maxAltitude, count: count}
}

func (s *Server) Conditions(ctx context.Context, req *wrapperspb.DoubleValue) (*structpb.Struct, error) {
	c, err := s.model.Conditions(req.GetValue())
	if err != nil {
		return nil, toStatus(err)
	}
	return toStruct(c)
}

// layerInfo is one entry of the Layers reply.
type layerInfo struct {
	atmosphere.Layer
	BasePressure float64 `json:"base_pressure_pa"`
}

func (s *Server) Layers(ctx context.Context, _ *emptypb.Empty) (*structpb.ListValue, error) {
	layers := s.model.Layers().Layers()
	out := make([]layerInfo, len(layers))
	for i, l := range layers {
		out[i] = layerInfo{Layer: l, BasePressure: s.model.BaseState(i).Pressure}
	}
	return toList(out)
}

func (s *Server) Profile(ctx context.Context, req *structpb.Struct) (*structpb.ListValue, error) {
	q, maxAlt, count, err := s.profileRequest(req)
	if err != nil {
		return nil, err
	}
	points, err := s.model.SampleProfile(q, maxAlt, count)
	if err != nil {
		return nil, toStatus(err)
	}
	return toList(points)
}

func (s *Server) PressureAltitude(ctx context.Context, req *wrapperspb.DoubleValue) (*wrapperspb.DoubleValue, error) {
	alt, err := s.model.PressureAltitude(req.GetValue())
	if err != nil {
		return nil, toStatus(err)
	}
	return wrapperspb.Double(alt), nil
}

func (s *Server) StreamProfile(req *structpb.Struct, stream grpc.ServerStreamingServer[structpb.Struct]) error {
	q, maxAlt, count, err := s.profileRequest(req)
	if err != nil {
		return err
	}
	// Profile yields nothing for a malformed request; surface the reason.
	if err := atmosphere.CheckProfile(maxAlt, count); err != nil {
		return toStatus(err)
	}

	ctx := stream.Context()
	sent := 0
	for alt, v := range s.model.Profile(q, maxAlt, count) {
		if err := ctx.Err(); err != nil {
			return status.FromContextError(err).Err()
		}
		msg, err := structpb.NewStruct(map[string]interface{}{"altitude_m": alt, "value": v})
		if err != nil {
			return status.Error(codes.Internal, err.Error())
		}
		if err := stream.Send(msg); err != nil {
			return err
		}
		sent++
	}
	logf("StreamProfile %s sent %d samples", q, sent)
	return nil
}

// profileRequest reads {quantity, max_altitude, count}, defaulting absent
// numeric fields.
func (s *Server) profileRequest(req *structpb.Struct) (atmosphere.Quantity, float64, int, error) {
	fields := req.GetFields()
	q, err := atmosphere.ParseQuantity(fields["quantity"].GetStringValue())
	if err != nil {
		return 0, 0, 0, toStatus(err)
	}
	maxAlt := s.maxAltitude
	if v, ok := fields["max_altitude"]; ok {
		maxAlt = v.GetNumberValue()
	}
	count := s.count
	if v, ok := fields["count"]; ok {
		n := v.GetNumberValue()
		if math.IsNaN(n) || n != math.Trunc(n) || n < 1 || n > atmosphere.MaxProfileSamples {
			return 0, 0, 0, status.Errorf(codes.InvalidArgument,
				"count must be a whole number between 1 and %d, got %v", atmosphere.MaxProfileSamples, n)
		}
		count = int(n)
	}
	return q, maxAlt, count, nil
}

// toStatus maps model errors onto gRPC status codes.
func toStatus(err error) error {
	switch {
	case errors.Is(err, atmosphere.ErrOutOfRange):
		return status.Error(codes.OutOfRange, err.Error())
	case errors.Is(err, atmosphere.ErrInvalidProfile):
		return status.Error(codes.InvalidArgument, err.Error())
	default:
		return status.Error(codes.Internal, err.Error())
	}
}

// toStruct converts v through its JSON form so Struct keys match the JSON
// tags used by the HTTP API.
func toStruct(v interface{}) (*structpb.Struct, error) {
	out := &structpb.Struct{}
	if err := viaJSON(v, out); err != nil {
		return nil, err
	}
	return out, nil
}

func toList(v interface{}) (*structpb.ListValue, error) {
	out := &structpb.ListValue{}
	if err := viaJSON(v, out); err != nil {
		return nil, err
	}
	return out, nil
}

func viaJSON(v interface{}, out proto.Message) error {
	b, err := json.Marshal(v)
	if err != nil {
		return status.Error(codes.Internal, err.Error())
	}
	if err := protojson.Unmarshal(b, out); err != nil {
		return status.Error(codes.Internal, err.Error())
	}
	return nil
}

// Listener runs a grpc.Server carrying the Atmosphere service.
type Listener struct {
	server   *grpc.Server
	listener net.Listener
	running  atomic.Bool
	wg       sync.WaitGroup
}

// Listen binds addr, registers srv and serves in the background.
func Listen(addr string, srv AtmosphereServer, opts ...grpc.ServerOption) (*Listener, error) {
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("failed to listen: %w", err)
	}

	l := &Listener{server: grpc.NewServer(opts...), listener: lis}
	RegisterAtmosphereServer(l.server, srv)
	l.running.Store(true)

	l.wg.Add(1)
	go func() {
		defer l.wg.Done()
		logf("listening on %s", lis.Addr())
		if err := l.server.Serve(lis); err != nil && l.running.Load() {
			logf("server error: %v", err)
		}
	}()
	return l, nil
}

// Addr returns the bound address.
func (l *Listener) Addr() net.Addr {
	return l.listener.Addr()
}

// Stop gracefully stops the server and waits for Serve to return.
func (l *Listener) Stop() {
	if !l.running.Swap(false) {
		return
	}
	l.server.GracefulStop()
	l.wg.Wait()
	logf("server stopped")
}
