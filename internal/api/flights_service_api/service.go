package flights_service_api

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

const ServiceName = "flightsearch.v1.FlightsService"

const (
	MethodListFlights   = "/" + ServiceName + "/ListFlights"
	MethodGetFlight     = "/" + ServiceName + "/GetFlight"
	MethodSearchFlights = "/" + ServiceName + "/SearchFlights"
)

// FlightsServiceServer is the read-only flight API. Messages are protobuf well-known
// types, so no generated code is needed on either side.
type FlightsServiceServer interface {
	ListFlights(ctx context.Context, in *emptypb.Empty) (*structpb.Struct, error)
	GetFlight(ctx context.Context, in *wrapperspb.Int64Value) (*structpb.Struct, error)
	SearchFlights(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error)
}

func RegisterFlightsServiceServer(s grpc.ServiceRegistrar, srv FlightsServiceServer) {
	s.RegisterService(&FlightsServiceDesc, srv)
}

var FlightsServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*FlightsServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "ListFlights", Handler: listFlightsHandler},
		{MethodName: "GetFlight", Handler: getFlightHandler},
		{MethodName: "SearchFlights", Handler: searchFlightsHandler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "flightsearch/v1/flights.proto",
}

func listFlightsHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(emptypb.Empty)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(FlightsServiceServer).ListFlights(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: MethodListFlights}
	return interceptor(ctx, in, info, func(ctx context.Context, req any) (any, error) {
		return srv.(FlightsServiceServer).ListFlights(ctx, req.(*emptypb.Empty))
	})
}

func getFlightHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(wrapperspb.Int64Value)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(FlightsServiceServer).GetFlight(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: MethodGetFlight}
	return interceptor(ctx, in, info, func(ctx context.Context, req any) (any, error) {
		return srv.(FlightsServiceServer).GetFlight(ctx, req.(*wrapperspb.Int64Value))
	})
}

func searchFlightsHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(FlightsServiceServer).SearchFlights(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: MethodSearchFlights}
	return interceptor(ctx, in, info, func(ctx context.Context, req any) (any, error) {
		return srv.(FlightsServiceServer).SearchFlights(ctx, req.(*structpb.Struct))
	})
}
