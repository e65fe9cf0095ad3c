package ec2

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	"github.com/aws/aws-sdk-go-v2/service/ec2/types"

	awserrors "github.com/input-output-hk/catalyst-forge-libs/aws/ec2s3/errors"
)

const duplicatePermission = "InvalidPermission.Duplicate"

// EnsureSecurityGroup returns the id of the security group named name,
// creating it in the default VPC when none exists.
func (m *Manager) EnsureSecurityGroup(ctx context.Context, name, description string) (string, error) {
	const op = "ec2.ensure_security_group"
	if name == "" {
		return "", awserrors.Invalid(op, "", "security group name is required")
	}

	out, err := m.api.DescribeSecurityGroups(ctx, &ec2.DescribeSecurityGroupsInput{
		Filters: []types.Filter{{
			Name:   aws.String("group-name"),
			Values: []string{name},
		}},
	})
	if err != nil {
		return "", m.fail(ctx, op, name, err)
	}
	if len(out.SecurityGroups) > 0 {
		id := aws.ToString(out.SecurityGroups[0].GroupId)
		m.info(ctx, "security group found", "group_name", name, "group_id", id)
		return id, nil
	}

	if description == "" {
		description = name
	}
	created, err := m.api.CreateSecurityGroup(ctx, &ec2.CreateSecurityGroupInput{
		GroupName:   aws.String(name),
		Description: aws.String(description),
	})
	if err != nil {
		return "", m.fail(ctx, "ec2.create_security_group", name, err)
	}
	id := aws.ToString(created.GroupId)
	m.info(ctx, "security group created", "group_name", name, "group_id", id)
	return id, nil
}

// AuthorizeIngress opens port on the security group to cidr.
// A rule that already exists is treated as success.
func (m *Manager) AuthorizeIngress(ctx context.Context, groupID, protocol string, port int32, cidr string) error {
	const op = "ec2.authorize_ingress"
	if groupID == "" {
		return awserrors.Invalid(op, "", "security group id is required")
	}
	if protocol == "" || cidr == "" {
		return awserrors.Invalid(op, groupID, "protocol and cidr are required")
	}

	_, err := m.api.AuthorizeSecurityGroupIngress(ctx, &ec2.AuthorizeSecurityGroupIngressInput{
		GroupId: aws.String(groupID),
		IpPermissions: []types.IpPermission{{
			IpProtocol: aws.String(protocol),
			FromPort:   aws.Int32(port),
			ToPort:     aws.Int32(port),
			IpRanges:   []types.IpRange{{CidrIp: aws.String(cidr)}},
		}},
	})
	if err != nil {
		if awserrors.Code(err) == duplicatePermission {
			m.info(ctx, "ingress rule already present", "group_id", groupID, "port", port, "cidr", cidr)
			return nil
		}
		return m.fail(ctx, op, groupID, err)
	}
	m.info(ctx, "ingress rule added", "group_id", groupID, "protocol", protocol, "port", port, "cidr", cidr)
	return nil
}

// SetSecurityGroups replaces the security groups attached to an instance.
func (m *Manager) SetSecurityGroups(ctx context.Context, id string, groupIDs ...string) error {
	const op = "ec2.set_security_groups"
	if id == "" {
		return awserrors.Invalid(op, "", "instance id is required")
	}
	if len(groupIDs) == 0 {
		return awserrors.Invalid(op, id, "at least one security group id is required")
	}

	_, err := m.api.ModifyInstanceAttribute(ctx, &ec2.ModifyInstanceAttributeInput{
		InstanceId: aws.String(id),
		Groups:     groupIDs,
	})
	if err != nil {
		return m.fail(ctx, op, id, err)
	}
	m.info(ctx, "security groups applied", "instance_id", id, "group_ids", groupIDs)
	return nil
}
