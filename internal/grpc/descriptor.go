package grpc

import (
	"fmt"

	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/reflect/protodesc"
	"google.golang.org/protobuf/reflect/protoreflect"
	"google.golang.org/protobuf/reflect/protoregistry"
	"google.golang.org/protobuf/types/descriptorpb"
	"google.golang.org/protobuf/types/known/structpb"
)

// ProtoFile is the path the service descriptor is registered under.
const ProtoFile = "qc/v1/quality_report.proto"

var methodNames = []string{
	MethodOverallQualityScore,
	MethodScoresByTicket,
	MethodAggregatedCheckpointScores,
	MethodPeriodOverPeriodScoreChange,
	MethodAgentSummary,
	MethodKPIs,
	MethodTicketReport,
}

// qualityReportFile describes qc.v1.QualityReport in the global registry so
// server reflection can resolve it. There is no generated .pb.go for it.
var qualityReportFile = mustRegisterFile()

func fileDescriptorProto() *descriptorpb.FileDescriptorProto {
	structDesc := (&structpb.Struct{}).ProtoReflect().Descriptor()
	msgType := "." + string(structDesc.FullName())

	methods := make([]*descriptorpb.MethodDescriptorProto, len(methodNames))
	for i, name := range methodNames {
		methods[i] = &descriptorpb.MethodDescriptorProto{
			Name:       proto.String(name),
			InputType:  proto.String(msgType),
			OutputType: proto.String(msgType),
		}
	}

	return &descriptorpb.FileDescriptorProto{
		Name:       proto.String(ProtoFile),
		Package:    proto.String("qc.v1"),
		Dependency: []string{structDesc.ParentFile().Path()},
		Syntax:     proto.String("proto3"),
		Service: []*descriptorpb.ServiceDescriptorProto{{
			Name:   proto.String("QualityReport"),
			Method: methods,
		}},
	}
}

func mustRegisterFile() protoreflect.FileDescriptor {
	fd, err := protodesc.NewFile(fileDescriptorProto(), protoregistry.GlobalFiles)
	if err != nil {
		panic(fmt.Sprintf("build %s: %v", ProtoFile, err))
	}
	if err := protoregistry.GlobalFiles.RegisterFile(fd); err != nil {
		panic(fmt.Sprintf("register %s: %v", ProtoFile, err))
	}
	return fd
}
