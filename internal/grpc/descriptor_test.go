package grpc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/reflect/protoreflect"
	"google.golang.org/protobuf/reflect/protoregistry"
)

func TestQualityReportDescriptor(t *testing.T) {
	fd, err := protoregistry.GlobalFiles.FindFileByPath(ProtoFile)
	require.NoError(t, err)
	assert.Equal(t, qualityReportFile, fd)

	d, err := protoregistry.GlobalFiles.FindDescriptorByName(ServiceName)
	require.NoError(t, err)
	svc, ok := d.(protoreflect.ServiceDescriptor)
	require.True(t, ok)

	require.Equal(t, len(QualityReportServiceDesc.Methods), svc.Methods().Len())
	for _, m := range QualityReportServiceDesc.Methods {
		md := svc.Methods().ByName(protoreflect.Name(m.MethodName))
		require.NotNil(t, md, m.MethodName)
		assert.Equal(t, protoreflect.FullName("google.protobuf.Struct"), md.Input().FullName())
		assert.Equal(t, protoreflect.FullName("google.protobuf.Struct"), md.Output().FullName())
		assert.False(t, md.IsStreamingClient() || md.IsStreamingServer())
	}
	assert.Equal(t, ProtoFile, QualityReportServiceDesc.Metadata)
}
