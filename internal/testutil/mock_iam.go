package testutil

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/service/iam"

	"github.com/input-output-hk/catalyst-forge-libs/aws/ec2s3/internal/awsapi"
)

var _ awsapi.IAMAPI = (*MockIAMClient)(nil)

// MockIAMClient stands in for the IAM API used to attach roles.
type MockIAMClient struct {
	callLog

	GetRoleFunc                  func(context.Context, *iam.GetRoleInput, ...func(*iam.Options)) (*iam.GetRoleOutput, error)
	GetInstanceProfileFunc       func(context.Context, *iam.GetInstanceProfileInput, ...func(*iam.Options)) (*iam.GetInstanceProfileOutput, error)
	CreateInstanceProfileFunc    func(context.Context, *iam.CreateInstanceProfileInput, ...func(*iam.Options)) (*iam.CreateInstanceProfileOutput, error)
	AddRoleToInstanceProfileFunc func(context.Context, *iam.AddRoleToInstanceProfileInput, ...func(*iam.Options)) (*iam.AddRoleToInstanceProfileOutput, error)
}

func (m *MockIAMClient) GetRole(ctx context.Context, in *iam.GetRoleInput, optFns ...func(*iam.Options)) (*iam.GetRoleOutput, error) {
	return invoke(&m.callLog, "GetRole", m.GetRoleFunc, ctx, in, optFns)
}

func (m *MockIAMClient) GetInstanceProfile(ctx context.Context, in *iam.GetInstanceProfileInput, optFns ...func(*iam.Options)) (*iam.GetInstanceProfileOutput, error) {
	return invoke(&m.callLog, "GetInstanceProfile", m.GetInstanceProfileFunc, ctx, in, optFns)
}

func (m *MockIAMClient) CreateInstanceProfile(ctx context.Context, in *iam.CreateInstanceProfileInput, optFns ...func(*iam.Options)) (*iam.CreateInstanceProfileOutput, error) {
	return invoke(&m.callLog, "CreateInstanceProfile", m.CreateInstanceProfileFunc, ctx, in, optFns)
}

func (m *MockIAMClient) AddRoleToInstanceProfile(ctx context.Context, in *iam.AddRoleToInstanceProfileInput, optFns ...func(*iam.Options)) (*iam.AddRoleToInstanceProfileOutput, error) {
	return invoke(&m.callLog, "AddRoleToInstanceProfile", m.AddRoleToInstanceProfileFunc, ctx, in, optFns)
}
