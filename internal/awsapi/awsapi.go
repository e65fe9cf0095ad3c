// Package awsapi defines the narrow AWS SDK interfaces used by the managers.
// These interfaces allow mocking in tests; the SDK clients satisfy them.
package awsapi

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	"github.com/aws/aws-sdk-go-v2/service/iam"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// EC2API defines the EC2 operations used by the compute manager.
type EC2API interface {
	// DescribeInstances lists instances, optionally filtered by id or tag
	DescribeInstances(
		ctx context.Context,
		params *ec2.DescribeInstancesInput,
		optFns ...func(*ec2.Options),
	) (*ec2.DescribeInstancesOutput, error)

	StartInstances(
		ctx context.Context,
		params *ec2.StartInstancesInput,
		optFns ...func(*ec2.Options),
	) (*ec2.StartInstancesOutput, error)

	StopInstances(
		ctx context.Context,
		params *ec2.StopInstancesInput,
		optFns ...func(*ec2.Options),
	) (*ec2.StopInstancesOutput, error)

	TerminateInstances(
		ctx context.Context,
		params *ec2.TerminateInstancesInput,
		optFns ...func(*ec2.Options),
	) (*ec2.TerminateInstancesOutput, error)

	RunInstances(
		ctx context.Context,
		params *ec2.RunInstancesInput,
		optFns ...func(*ec2.Options),
	) (*ec2.RunInstancesOutput, error)

	CreateTags(
		ctx context.Context,
		params *ec2.CreateTagsInput,
		optFns ...func(*ec2.Options),
	) (*ec2.CreateTagsOutput, error)

	// CreateKeyPair returns the private key material exactly once
	CreateKeyPair(
		ctx context.Context,
		params *ec2.CreateKeyPairInput,
		optFns ...func(*ec2.Options),
	) (*ec2.CreateKeyPairOutput, error)

	DescribeSecurityGroups(
		ctx context.Context,
		params *ec2.DescribeSecurityGroupsInput,
		optFns ...func(*ec2.Options),
	) (*ec2.DescribeSecurityGroupsOutput, error)

	CreateSecurityGroup(
		ctx context.Context,
		params *ec2.CreateSecurityGroupInput,
		optFns ...func(*ec2.Options),
	) (*ec2.CreateSecurityGroupOutput, error)

	AuthorizeSecurityGroupIngress(
		ctx context.Context,
		params *ec2.AuthorizeSecurityGroupIngressInput,
		optFns ...func(*ec2.Options),
	) (*ec2.AuthorizeSecurityGroupIngressOutput, error)

	ModifyInstanceAttribute(
		ctx context.Context,
		params *ec2.ModifyInstanceAttributeInput,
		optFns ...func(*ec2.Options),
	) (*ec2.ModifyInstanceAttributeOutput, error)

	AssociateIamInstanceProfile(
		ctx context.Context,
		params *ec2.AssociateIamInstanceProfileInput,
		optFns ...func(*ec2.Options),
	) (*ec2.AssociateIamInstanceProfileOutput, error)
}

// IAMAPI defines the IAM operations needed to attach a role to an instance.
type IAMAPI interface {
	GetRole(
		ctx context.Context,
		params *iam.GetRoleInput,
		optFns ...func(*iam.Options),
	) (*iam.GetRoleOutput, error)

	GetInstanceProfile(
		ctx context.Context,
		params *iam.GetInstanceProfileInput,
		optFns ...func(*iam.Options),
	) (*iam.GetInstanceProfileOutput, error)

	CreateInstanceProfile(
		ctx context.Context,
		params *iam.CreateInstanceProfileInput,
		optFns ...func(*iam.Options),
	) (*iam.CreateInstanceProfileOutput, error)

	AddRoleToInstanceProfile(
		ctx context.Context,
		params *iam.AddRoleToInstanceProfileInput,
		optFns ...func(*iam.Options),
	) (*iam.AddRoleToInstanceProfileOutput, error)
}

// S3API defines the S3 operations used by the object store manager.
// It embeds manager.UploadAPIClient so the same client drives multipart uploads.
type S3API interface {
	manager.UploadAPIClient

	ListBuckets(
		ctx context.Context,
		params *s3.ListBucketsInput,
		optFns ...func(*s3.Options),
	) (*s3.ListBucketsOutput, error)

	CreateBucket(
		ctx context.Context,
		params *s3.CreateBucketInput,
		optFns ...func(*s3.Options),
	) (*s3.CreateBucketOutput, error)

	DeleteBucket(
		ctx context.Context,
		params *s3.DeleteBucketInput,
		optFns ...func(*s3.Options),
	) (*s3.DeleteBucketOutput, error)

	GetObject(
		ctx context.Context,
		params *s3.GetObjectInput,
		optFns ...func(*s3.Options),
	) (*s3.GetObjectOutput, error)

	ListObjectsV2(
		ctx context.Context,
		params *s3.ListObjectsV2Input,
		optFns ...func(*s3.Options),
	) (*s3.ListObjectsV2Output, error)

	DeleteObjects(
		ctx context.Context,
		params *s3.DeleteObjectsInput,
		optFns ...func(*s3.Options),
	) (*s3.DeleteObjectsOutput, error)
}

// Verify that the AWS SDK clients implement our interfaces
var (
	_ EC2API = (*ec2.Client)(nil)
	_ IAMAPI = (*iam.Client)(nil)
	_ S3API  = (*s3.Client)(nil)
)
