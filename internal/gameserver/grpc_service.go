package gameserver

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/cory-johannsen/cardbattle/internal/game/battle"
	"github.com/cory-johannsen/cardbattle/internal/roster"
)

// ServiceName is the fully qualified gRPC service name.
const ServiceName = "cardbattle.v1.BattleService"

const (
	methodStartBattle  = "/" + ServiceName + "/StartBattle"
	methodSubmitAction = "/" + ServiceName + "/SubmitAction"
	methodGetBattle    = "/" + ServiceName + "/GetBattle"
	methodSetRoster    = "/" + ServiceName + "/SetRoster"
	methodWatchBattle  = "/" + ServiceName + "/WatchBattle"
)

// BattleServiceServer is the server API for the battle service. Requests and
// responses are google.protobuf.Struct documents.
type BattleServiceServer interface {
	StartBattle(context.Context, *structpb.Struct) (*structpb.Struct, error)
	SubmitAction(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetBattle(context.Context, *structpb.Struct) (*structpb.Struct, error)
	SetRoster(context.Context, *structpb.Struct) (*structpb.Struct, error)
	WatchBattle(*structpb.Struct, grpc.ServerStream) error
}

func unaryHandler(method string, call func(BattleServiceServer, context.Context, *structpb.Struct) (*structpb.Struct, error)) grpc.MethodHandler {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(structpb.Struct)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(BattleServiceServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: method}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(BattleServiceServer), ctx, req.(*structpb.Struct))
		}
		return interceptor(ctx, in, info, handler)
	}
}

func watchBattleHandler(srv any, stream grpc.ServerStream) error {
	in := new(structpb.Struct)
	if err := stream.RecvMsg(in); err != nil {
		return err
	}
	return srv.(BattleServiceServer).WatchBattle(in, stream)
}

// BattleServiceDesc describes the battle service for grpc.Server.RegisterService.
var BattleServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*BattleServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "StartBattle", Handler: unaryHandler(methodStartBattle, BattleServiceServer.StartBattle)},
		{MethodName: "SubmitAction", Handler: unaryHandler(methodSubmitAction, BattleServiceServer.SubmitAction)},
		{MethodName: "GetBattle", Handler: unaryHandler(methodGetBattle, BattleServiceServer.GetBattle)},
		{MethodName: "SetRoster", Handler: unaryHandler(methodSetRoster, BattleServiceServer.SetRoster)},
	},
	Streams: []grpc.StreamDesc{
		{StreamName: "WatchBattle", Handler: watchBattleHandler, ServerStreams: true},
	},
	Metadata: "cardbattle/v1/battle.proto",
}

// RegisterBattleServiceServer registers srv with s.
func RegisterBattleServiceServer(s grpc.ServiceRegistrar, srv BattleServiceServer) {
	s.RegisterService(&BattleServiceDesc, srv)
}

// BattleService implements BattleServiceServer on top of a BattleHandler.
type BattleService struct {
	handler *BattleHandler
	rosters roster.Store
	cards   battle.CardLookup
	size    int
	logger  *zap.Logger
}

// NewBattleService creates a BattleService.
//
// Precondition: handler, rosters, cards, and logger must be non-nil.
// rosterSize is the roster length SetRoster enforces; 0 accepts any non-empty roster.
func NewBattleService(handler *BattleHandler, rosters roster.Store, cards battle.CardLookup, rosterSize int, logger *zap.Logger) *BattleService {
	return &BattleService{
		handler: handler,
		rosters: rosters,
		cards:   cards,
		size:    rosterSize,
		logger:  logger,
	}
}

// StartBattle expects {"player", "opponent"?, "locale"?, "policy"?}.
func (s *BattleService) StartBattle(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	player, err := requiredString(req, fieldPlayer)
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}
	snap, err := s.handler.StartBattle(ctx, StartRequest{
		Challenger: player,
		Opponent:   stringField(req, fieldOpponent),
		Locale:     stringField(req, fieldLocale),
		Policy:     stringField(req, fieldPolicy),
	})
	if err != nil {
		return nil, s.statusFor("StartBattle", err)
	}
	s.logger.Info("battle started",
		zap.String("battle_id", snap.BattleID),
		zap.String("player1", snap.Players[battle.SideOne].Name),
		zap.String("player2", snap.Players[battle.SideTwo].Name),
	)
	return s.encode(snap)
}

// SubmitAction expects {"battle_id", "player", "action", "ability"|"index"}.
func (s *BattleService) SubmitAction(_ context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	id, err := requiredString(req, fieldBattleID)
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}
	player, err := requiredString(req, fieldPlayer)
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}
	action, err := DecodeAction(req)
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}
	snap, err := s.handler.Submit(id, player, action)
	if err != nil {
		return nil, s.statusFor("SubmitAction", err)
	}
	return s.encode(snap)
}

// GetBattle expects {"battle_id"}.
func (s *BattleService) GetBattle(_ context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	id, err := requiredString(req, fieldBattleID)
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}
	snap, err := s.handler.Snapshot(id)
	if err != nil {
		return nil, s.statusFor("GetBattle", err)
	}
	return s.encode(snap)
}

// SetRoster expects {"player", "cards": [name, ...]} and replies with the stored roster.
func (s *BattleService) SetRoster(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	player, err := requiredString(req, fieldPlayer)
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}
	names, err := stringListField(req, fieldCards)
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}
	if len(names) == 0 || (s.size > 0 && len(names) != s.size) {
		return nil, status.Errorf(codes.InvalidArgument, "%v: got %d cards, need %d", ErrRosterSize, len(names), s.size)
	}
	seen := make(map[string]bool, len(names))
	canonical := make([]string, 0, len(names))
	cards := make([]any, 0, len(names))
	for _, name := range names {
		c, ok := s.cards.Get(name)
		if !ok {
			return nil, status.Errorf(codes.InvalidArgument, "%v: %q", battle.ErrUnknownCard, name)
		}
		if seen[c.Name()] {
			return nil, status.Errorf(codes.InvalidArgument, "duplicate card %q", c.Name())
		}
		seen[c.Name()] = true
		canonical = append(canonical, c.Name())
		cards = append(cards, c.Name())
	}
	if err := s.rosters.SetRoster(ctx, player, canonical); err != nil {
		return nil, s.statusFor("SetRoster", err)
	}
	return structpb.NewStruct(map[string]any{fieldPlayer: player, fieldCards: cards})
}

// WatchBattle expects {"battle_id"} and streams snapshots until the battle ends.
func (s *BattleService) WatchBattle(req *structpb.Struct, stream grpc.ServerStream) error {
	id, err := requiredString(req, fieldBattleID)
	if err != nil {
		return status.Error(codes.InvalidArgument, err.Error())
	}
	updates, cancel, err := s.handler.Watch(id)
	if err != nil {
		return s.statusFor("WatchBattle", err)
	}
	defer cancel()
	for {
		select {
		case <-stream.Context().Done():
			return nil
		case snap, ok := <-updates:
			if !ok {
				return nil
			}
			msg, err := s.encode(snap)
			if err != nil {
				return err
			}
			if err := stream.SendMsg(msg); err != nil {
				return err
			}
		}
	}
}

func (s *BattleService) encode(snap battle.Snapshot) (*structpb.Struct, error) {
	msg, err := EncodeSnapshot(snap)
	if err != nil {
		return nil, status.Error(codes.Internal, fmt.Sprintf("encoding snapshot: %v", err))
	}
	return msg, nil
}

// statusFor maps domain errors onto gRPC status codes.
func (s *BattleService) statusFor(method string, err error) error {
	code := codeFor(err)
	if code == codes.Internal {
		s.logger.Error("request failed", zap.String("method", method), zap.Error(err))
	} else {
		s.logger.Debug("request rejected", zap.String("method", method), zap.Stringer("code", code), zap.Error(err))
	}
	return status.Error(code, err.Error())
}

func codeFor(err error) codes.Code {
	switch {
	case errors.Is(err, ErrBattleNotFound), errors.Is(err, roster.ErrNoRoster), errors.Is(err, ErrUnknownPolicy):
		return codes.NotFound
	case errors.Is(err, ErrNotParticipant):
		return codes.PermissionDenied
	case errors.Is(err, battle.ErrTurnExpired):
		return codes.DeadlineExceeded
	case errors.Is(err, battle.ErrNotImplemented):
		return codes.Unimplemented
	case errors.Is(err, battle.ErrNotYourTurn),
		errors.Is(err, battle.ErrBattleOver),
		errors.Is(err, battle.ErrNotStarted),
		errors.Is(err, battle.ErrInvalidAbilityUse):
		return codes.FailedPrecondition
	case errors.Is(err, battle.ErrUnknownAbilityKind),
		errors.Is(err, battle.ErrInvalidSwitch),
		errors.Is(err, battle.ErrUnknownAction),
		errors.Is(err, battle.ErrUnknownCard),
		errors.Is(err, battle.ErrEmptyRoster),
		errors.Is(err, ErrRosterSize),
		errors.Is(err, ErrInvalidRequest):
		return codes.InvalidArgument
	case errors.Is(err, context.DeadlineExceeded):
		return codes.DeadlineExceeded
	case errors.Is(err, context.Canceled):
		return codes.Canceled
	}
	return codes.Internal
}
