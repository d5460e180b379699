package grpc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

// ServiceName is the fully qualified name of the report service.
const ServiceName = "qc.v1.QualityReport"

// Method names of the report service.
const (
	MethodOverallQualityScore         = "GetOverallQualityScore"
	MethodScoresByTicket              = "GetScoresByTicket"
	MethodAggregatedCheckpointScores  = "GetAggregatedCheckpointScores"
	MethodPeriodOverPeriodScoreChange = "GetPeriodOverPeriodScoreChange"
	MethodAgentSummary                = "GetAgentSummary"
	MethodKPIs                        = "GetKPIs"
	MethodTicketReport                = "GetTicketReport"
)

// QualityReportServer is the server API of qc.v1.QualityReport. Requests and
// responses are google.protobuf.Struct documents.
type QualityReportServer interface {
	GetOverallQualityScore(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetScoresByTicket(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetAggregatedCheckpointScores(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetPeriodOverPeriodScoreChange(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetAgentSummary(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetKPIs(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetTicketReport(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

type structMethod func(QualityReportServer, context.Context, *structpb.Struct) (*structpb.Struct, error)

func unaryHandler(method string, call structMethod) grpc.MethodHandler {
	fullMethod := "/" + ServiceName + "/" + method
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(structpb.Struct)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(QualityReportServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(QualityReportServer), ctx, req.(*structpb.Struct))
		}
		return interceptor(ctx, in, info, handler)
	}
}

// QualityReportServiceDesc describes qc.v1.QualityReport for grpc.Server.
var QualityReportServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*QualityReportServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: MethodOverallQualityScore, Handler: unaryHandler(MethodOverallQualityScore, QualityReportServer.GetOverallQualityScore)},
		{MethodName: MethodScoresByTicket, Handler: unaryHandler(MethodScoresByTicket, QualityReportServer.GetScoresByTicket)},
		{MethodName: MethodAggregatedCheckpointScores, Handler: unaryHandler(MethodAggregatedCheckpointScores, QualityReportServer.GetAggregatedCheckpointScores)},
		{MethodName: MethodPeriodOverPeriodScoreChange, Handler: unaryHandler(MethodPeriodOverPeriodScoreChange, QualityReportServer.GetPeriodOverPeriodScoreChange)},
		{MethodName: MethodAgentSummary, Handler: unaryHandler(MethodAgentSummary, QualityReportServer.GetAgentSummary)},
		{MethodName: MethodKPIs, Handler: unaryHandler(MethodKPIs, QualityReportServer.GetKPIs)},
		{MethodName: MethodTicketReport, Handler: unaryHandler(MethodTicketReport, QualityReportServer.GetTicketReport)},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: ProtoFile,
}

// RegisterQualityReportServer registers srv on s.
func RegisterQualityReportServer(s grpc.ServiceRegistrar, srv QualityReportServer) {
	s.RegisterService(&QualityReportServiceDesc, srv)
}

// QualityReportClient calls qc.v1.QualityReport methods by name.
type QualityReportClient struct {
	cc grpc.ClientConnInterface
}

func NewQualityReportClient(cc grpc.ClientConnInterface) *QualityReportClient {
	return &QualityReportClient{cc: cc}
}

// Call invokes method with req and returns the response document.
func (c *QualityReportClient) Call(ctx context.Context, method string, req *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, "/"+ServiceName+"/"+method, req, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}
