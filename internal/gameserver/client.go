package gameserver

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

// BattleClient calls a remote BattleService.
type BattleClient struct {
	cc grpc.ClientConnInterface
}

// NewBattleClient wraps cc.
func NewBattleClient(cc grpc.ClientConnInterface) *BattleClient {
	return &BattleClient{cc: cc}
}

func (c *BattleClient) invoke(ctx context.Context, method string, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, method, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *BattleClient) StartBattle(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, methodStartBattle, in, opts...)
}

func (c *BattleClient) SubmitAction(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, methodSubmitAction, in, opts...)
}

func (c *BattleClient) GetBattle(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, methodGetBattle, in, opts...)
}

func (c *BattleClient) SetRoster(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, methodSetRoster, in, opts...)
}

// BattleWatcher receives snapshots from a WatchBattle stream.
type BattleWatcher interface {
	Recv() (*structpb.Struct, error)
}

type battleWatcher struct {
	grpc.ClientStream
}

func (w *battleWatcher) Recv() (*structpb.Struct, error) {
	m := new(structpb.Struct)
	if err := w.ClientStream.RecvMsg(m); err != nil {
		return nil, err
	}
	return m, nil
}

// WatchBattle opens a snapshot stream. Recv returns io.EOF after the final snapshot.
func (c *BattleClient) WatchBattle(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (BattleWatcher, error) {
	stream, err := c.cc.NewStream(ctx, &BattleServiceDesc.Streams[0], methodWatchBattle, opts...)
	if err != nil {
		return nil, err
	}
	if err := stream.SendMsg(in); err != nil {
		return nil, err
	}
	if err := stream.CloseSend(); err != nil {
		return nil, err
	}
	return &battleWatcher{ClientStream: stream}, nil
}
