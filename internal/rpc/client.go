package rpc

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/banshee-data/atmosphere/internal/atmosphere"
)

// Client calls a remote Atmosphere service and decodes replies into the
// model's own types. Status codes OutOfRange and InvalidArgument come back
// wrapping atmosphere.ErrOutOfRange and atmosphere.ErrInvalidProfile.
type Client struct {
	cc grpc.ClientConnInterface
}

// NewClient wraps an existing connection.
func NewClient(cc grpc.ClientConnInterface) *Client {
	return &Client{cc: cc}
}

// Dial connects to addr without transport security.
func Dial(addr string) (*Client, *grpc.ClientConn, error) {
	conn, err := grpc.NewClient(addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, nil, fmt.Errorf("dial %s: %w", addr, err)
	}
	return NewClient(conn), conn, nil
}

func (c *Client) Conditions(ctx context.Context, altitude float64) (atmosphere.Conditions, error) {
	var out atmosphere.Conditions
	reply := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, conditionsMethod, wrapperspb.Double(altitude), reply); err != nil {
		return out, fromStatus(err)
	}
	return out, fromMessage(reply, &out)
}

func (c *Client) Layers(ctx context.Context) ([]atmosphere.Layer, error) {
	reply := new(structpb.ListValue)
	if err := c.cc.Invoke(ctx, layersMethod, &emptypb.Empty{}, reply); err != nil {
		return nil, fromStatus(err)
	}
	var out []atmosphere.Layer
	return out, fromMessage(reply, &out)
}

func (c *Client) Profile(ctx context.Context, q atmosphere.Quantity, maxAltitude float64, count int) ([]atmosphere.ProfilePoint, error) {
	req, err := profileRequest(q, maxAltitude, count)
	if err != nil {
		return nil, err
	}
	reply := new(structpb.ListValue)
	if err := c.cc.Invoke(ctx, profileMethod, req, reply); err != nil {
		return nil, fromStatus(err)
	}
	var out []atmosphere.ProfilePoint
	return out, fromMessage(reply, &out)
}

func (c *Client) PressureAltitude(ctx context.Context, pressure float64) (float64, error) {
	reply := new(wrapperspb.DoubleValue)
	if err := c.cc.Invoke(ctx, pressureAltitudeMethod, wrapperspb.Double(pressure), reply); err != nil {
		return 0, fromStatus(err)
	}
	return reply.GetValue(), nil
}

// StreamProfile calls fn for every streamed sample, stopping at the first
// error fn returns.
func (c *Client) StreamProfile(ctx context.Context, q atmosphere.Quantity, maxAltitude float64, count int, fn func(atmosphere.ProfilePoint) error) error {
	req, err := profileRequest(q, maxAltitude, count)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	cs, err := c.cc.NewStream(ctx, &ServiceDesc.Streams[0], streamProfileMethod)
	if err != nil {
		return fromStatus(err)
	}
	stream := &grpc.GenericClientStream[structpb.Struct, structpb.Struct]{ClientStream: cs}
	if err := stream.SendMsg(req); err != nil {
		return fromStatus(err)
	}
	if err := stream.CloseSend(); err != nil {
		return fromStatus(err)
	}

	for {
		msg, err := stream.Recv()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fromStatus(err)
		}
		fields := msg.GetFields()
		p := atmosphere.ProfilePoint{
			Altitude: fields["altitude_m"].GetNumberValue(),
			Value:    fields["value"].GetNumberValue(),
		}
		if err := fn(p); err != nil {
			return err
		}
	}
}

func profileRequest(q atmosphere.Quantity, maxAltitude float64, count int) (*structpb.Struct, error) {
	return structpb.NewStruct(map[string]interface{}{
		"quantity":     q.String(),
		"max_altitude": maxAltitude,
		"count":        count,
	})
}

// fromStatus turns model-domain status codes back into wrapped sentinel
// errors.
func fromStatus(err error) error {
	st, ok := status.FromError(err)
	if !ok {
		return err
	}
	switch st.Code() {
	case codes.OutOfRange:
		return fmt.Errorf("%w: %s", atmosphere.ErrOutOfRange, st.Message())
	case codes.InvalidArgument:
		return fmt.Errorf("%w: %s", atmosphere.ErrInvalidProfile, st.Message())
	}
	return err
}

func fromMessage(m proto.Message, v interface{}) error {
	b, err := protojson.Marshal(m)
	if err != nil {
		return fmt.Errorf("marshal reply: %w", err)
	}
	if err := json.Unmarshal(b, v); err != nil {
		return fmt.Errorf("decode reply: %w", err)
	}
	return nil
}
