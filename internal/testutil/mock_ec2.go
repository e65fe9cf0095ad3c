package testutil

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/service/ec2"

	"github.com/input-output-hk/catalyst-forge-libs/aws/ec2s3/internal/awsapi"
)

var _ awsapi.EC2API = (*MockEC2Client)(nil)

// MockEC2Client stands in for the EC2 API. An operation whose Func field is nil
// returns an empty output.
type MockEC2Client struct {
	callLog

	DescribeInstancesFunc             func(context.Context, *ec2.DescribeInstancesInput, ...func(*ec2.Options)) (*ec2.DescribeInstancesOutput, error)
	StartInstancesFunc                func(context.Context, *ec2.StartInstancesInput, ...func(*ec2.Options)) (*ec2.StartInstancesOutput, error)
	StopInstancesFunc                 func(context.Context, *ec2.StopInstancesInput, ...func(*ec2.Options)) (*ec2.StopInstancesOutput, error)
	TerminateInstancesFunc            func(context.Context, *ec2.TerminateInstancesInput, ...func(*ec2.Options)) (*ec2.TerminateInstancesOutput, error)
	RunInstancesFunc                  func(context.Context, *ec2.RunInstancesInput, ...func(*ec2.Options)) (*ec2.RunInstancesOutput, error)
	CreateTagsFunc                    func(context.Context, *ec2.CreateTagsInput, ...func(*ec2.Options)) (*ec2.CreateTagsOutput, error)
	CreateKeyPairFunc                 func(context.Context, *ec2.CreateKeyPairInput, ...func(*ec2.Options)) (*ec2.CreateKeyPairOutput, error)
	DescribeSecurityGroupsFunc        func(context.Context, *ec2.DescribeSecurityGroupsInput, ...func(*ec2.Options)) (*ec2.DescribeSecurityGroupsOutput, error)
	CreateSecurityGroupFunc           func(context.Context, *ec2.CreateSecurityGroupInput, ...func(*ec2.Options)) (*ec2.CreateSecurityGroupOutput, error)
	AuthorizeSecurityGroupIngressFunc func(context.Context, *ec2.AuthorizeSecurityGroupIngressInput, ...func(*ec2.Options)) (*ec2.AuthorizeSecurityGroupIngressOutput, error)
	ModifyInstanceAttributeFunc       func(context.Context, *ec2.ModifyInstanceAttributeInput, ...func(*ec2.Options)) (*ec2.ModifyInstanceAttributeOutput, error)
	AssociateIamInstanceProfileFunc   func(context.Context, *ec2.AssociateIamInstanceProfileInput, ...func(*ec2.Options)) (*ec2.AssociateIamInstanceProfileOutput, error)
}

func (m *MockEC2Client) DescribeInstances(ctx context.Context, in *ec2.DescribeInstancesInput, optFns ...func(*ec2.Options)) (*ec2.DescribeInstancesOutput, error) {
	return invoke(&m.callLog, "DescribeInstances", m.DescribeInstancesFunc, ctx, in, optFns)
}

func (m *MockEC2Client) StartInstances(ctx context.Context, in *ec2.StartInstancesInput, optFns ...func(*ec2.Options)) (*ec2.StartInstancesOutput, error) {
	return invoke(&m.callLog, "StartInstances", m.StartInstancesFunc, ctx, in, optFns)
}

func (m *MockEC2Client) StopInstances(ctx context.Context, in *ec2.StopInstancesInput, optFns ...func(*ec2.Options)) (*ec2.StopInstancesOutput, error) {
	return invoke(&m.callLog, "StopInstances", m.StopInstancesFunc, ctx, in, optFns)
}

func (m *MockEC2Client) TerminateInstances(ctx context.Context, in *ec2.TerminateInstancesInput, optFns ...func(*ec2.Options)) (*ec2.TerminateInstancesOutput, error) {
	return invoke(&m.callLog, "TerminateInstances", m.TerminateInstancesFunc, ctx, in, optFns)
}

func (m *MockEC2Client) RunInstances(ctx context.Context, in *ec2.RunInstancesInput, optFns ...func(*ec2.Options)) (*ec2.RunInstancesOutput, error) {
	return invoke(&m.callLog, "RunInstances", m.RunInstancesFunc, ctx, in, optFns)
}

func (m *MockEC2Client) CreateTags(ctx context.Context, in *ec2.CreateTagsInput, optFns ...func(*ec2.Options)) (*ec2.CreateTagsOutput, error) {
	return invoke(&m.callLog, "CreateTags", m.CreateTagsFunc, ctx, in, optFns)
}

func (m *MockEC2Client) CreateKeyPair(ctx context.Context, in *ec2.CreateKeyPairInput, optFns ...func(*ec2.Options)) (*ec2.CreateKeyPairOutput, error) {
	return invoke(&m.callLog, "CreateKeyPair", m.CreateKeyPairFunc, ctx, in, optFns)
}

func (m *MockEC2Client) DescribeSecurityGroups(ctx context.Context, in *ec2.DescribeSecurityGroupsInput, optFns ...func(*ec2.Options)) (*ec2.DescribeSecurityGroupsOutput, error) {
	return invoke(&m.callLog, "DescribeSecurityGroups", m.DescribeSecurityGroupsFunc, ctx, in, optFns)
}

func (m *MockEC2Client) CreateSecurityGroup(ctx context.Context, in *ec2.CreateSecurityGroupInput, optFns ...func(*ec2.Options)) (*ec2.CreateSecurityGroupOutput, error) {
	return invoke(&m.callLog, "CreateSecurityGroup", m.CreateSecurityGroupFunc, ctx, in, optFns)
}

func (m *MockEC2Client) AuthorizeSecurityGroupIngress(ctx context.Context, in *ec2.AuthorizeSecurityGroupIngressInput, optFns ...func(*ec2.Options)) (*ec2.AuthorizeSecurityGroupIngressOutput, error) {
	return invoke(&m.callLog, "AuthorizeSecurityGroupIngress", m.AuthorizeSecurityGroupIngressFunc, ctx, in, optFns)
}

func (m *MockEC2Client) ModifyInstanceAttribute(ctx context.Context, in *ec2.ModifyInstanceAttributeInput, optFns ...func(*ec2.Options)) (*ec2.ModifyInstanceAttributeOutput, error) {
	return invoke(&m.callLog, "ModifyInstanceAttribute", m.ModifyInstanceAttributeFunc, ctx, in, optFns)
}

func (m *MockEC2Client) AssociateIamInstanceProfile(ctx context.Context, in *ec2.AssociateIamInstanceProfileInput, optFns ...func(*ec2.Options)) (*ec2.AssociateIamInstanceProfileOutput, error) {
	return invoke(&m.callLog, "AssociateIamInstanceProfile", m.AssociateIamInstanceProfileFunc, ctx, in, optFns)
}
