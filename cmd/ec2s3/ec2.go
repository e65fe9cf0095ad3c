package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/input-output-hk/catalyst-forge-libs/aws/ec2s3/ec2"
)

func newEC2Command(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ec2",
		Short: "Manage EC2 instances",
	}
	cmd.AddCommand(
		newEC2ListCommand(a),
		newEC2DescribeCommand(a),
		newEC2TransitionCommand(a, "start", "Start an instance", ec2.StateRunning, (*ec2.Manager).StartInstance),
		newEC2TransitionCommand(a, "stop", "Stop an instance", ec2.StateStopped, (*ec2.Manager).StopInstance),
		newEC2TransitionCommand(a, "terminate", "Terminate an instance", ec2.StateTerminated, (*ec2.Manager).TerminateInstance),
		newEC2WaitCommand(a),
		newEC2PublicIPCommand(a),
		newEC2KeyPairCommand(a),
		newEC2LaunchCommand(a),
		newEC2SecurityGroupCommand(a),
		newEC2AuthorizeCommand(a),
		newEC2SetSecurityGroupsCommand(a),
		newEC2AttachRoleCommand(a),
	)
	return cmd
}

func newEC2ListCommand(a *app) *cobra.Command {
	var state string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List instances as a table",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			m, err := a.ec2(cmd.Context())
			if err != nil {
				return err
			}

			var instances []ec2.Instance
			if state == "" {
				instances, err = m.ListInstances(cmd.Context())
			} else {
				var st ec2.State
				if st, err = ec2.ParseState(state); err != nil {
					return err
				}
				instances, err = m.InstancesByState(cmd.Context(), st)
			}
			if err != nil {
				return err
			}
			return ec2.WriteInstanceTable(a.out, instances)
		},
	}
	cmd.Flags().StringVar(&state, "state", "", "only list instances in this state")
	return cmd
}

func newEC2DescribeCommand(a *app) *cobra.Command {
	var byName bool
	cmd := &cobra.Command{
		Use:   "describe <instance-id|name>",
		Short: "Describe one instance",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := a.ec2(cmd.Context())
			if err != nil {
				return err
			}

			var inst *ec2.Instance
			if byName {
				inst, err = m.InstanceByName(cmd.Context(), args[0])
			} else {
				inst, err = m.Instance(cmd.Context(), args[0])
			}
			if err != nil {
				return err
			}
			return ec2.WriteInstanceTable(a.out, []ec2.Instance{*inst})
		},
	}
	cmd.Flags().BoolVar(&byName, "name", false, "look the instance up by its Name tag")
	return cmd
}

type transitionFunc func(*ec2.Manager, context.Context, string) (*ec2.StateChange, error)

func newEC2TransitionCommand(a *app, use, short string, target ec2.State, fn transitionFunc) *cobra.Command {
	var (
		wait    bool
		timeout time.Duration
	)
	cmd := &cobra.Command{
		Use:   use + " <instance-id>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := a.ec2(cmd.Context())
			if err != nil {
				return err
			}

			change, err := fn(m, cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(a.out, "%s: %s -> %s\n", change.InstanceID, change.Previous, change.Current)

			if !wait {
				return nil
			}
			if err := m.WaitForState(cmd.Context(), args[0], target, timeout); err != nil {
				return err
			}
			fmt.Fprintf(a.out, "%s: %s\n", args[0], target)
			return nil
		},
	}
	cmd.Flags().BoolVar(&wait, "wait", false, "wait until the instance is "+string(target))
	cmd.Flags().DurationVar(&timeout, "timeout", 5*time.Minute, "how long --wait waits")
	return cmd
}

func newEC2WaitCommand(a *app) *cobra.Command {
	var (
		timeout  time.Duration
		interval time.Duration
	)
	cmd := &cobra.Command{
		Use:   "wait <instance-id> <state>",
		Short: "Wait until an instance reaches a state",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			target, err := ec2.ParseState(args[1])
			if err != nil {
				return err
			}
			m, err := a.ec2(cmd.Context(), ec2.WithPollInterval(interval))
			if err != nil {
				return err
			}
			if err := m.WaitForState(cmd.Context(), args[0], target, timeout); err != nil {
				return err
			}
			fmt.Fprintf(a.out, "%s: %s\n", args[0], target)
			return nil
		},
	}
	cmd.Flags().DurationVar(&timeout, "timeout", 5*time.Minute, "maximum time to wait")
	cmd.Flags().DurationVar(&interval, "interval", ec2.DefaultPollInterval, "time between polls")
	return cmd
}

func newEC2PublicIPCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "public-ip <instance-id>",
		Short: "Print an instance's public IPv4 address",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := a.ec2(cmd.Context())
			if err != nil {
				return err
			}
			ip, err := m.PublicIP(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if ip == ec2.NoPublicIP {
				return fmt.Errorf("instance %s has no public ip", args[0])
			}
			fmt.Fprintln(a.out, ip)
			return nil
		},
	}
}

func newEC2KeyPairCommand(a *app) *cobra.Command {
	var dir string
	cmd := &cobra.Command{
		Use:   "create-key-pair <name>",
		Short: "Create a key pair and save its private key as <name>.pem",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := a.ec2(cmd.Context(), ec2.WithKeyDir(dir))
			if err != nil {
				return err
			}
			path, err := m.CreateKeyPair(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(a.out, path)
			return nil
		},
	}
	cmd.Flags().StringVar(&dir, "dir", "", "directory for the .pem file (default current directory)")
	return cmd
}

func newEC2LaunchCommand(a *app) *cobra.Command {
	var spec ec2.LaunchSpec
	cmd := &cobra.Command{
		Use:   "launch",
		Short: "Launch a new instance",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			m, err := a.ec2(cmd.Context())
			if err != nil {
				return err
			}
			id, err := m.LaunchInstance(cmd.Context(), spec)
			if err != nil {
				return err
			}
			fmt.Fprintln(a.out, id)
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVar(&spec.Name, "name", "", "Name tag")
	f.StringVar(&spec.ImageID, "image", "", "AMI id")
	f.StringVar(&spec.InstanceType, "type", ec2.DefaultInstanceType, "instance type")
	f.StringVar(&spec.KeyName, "key", "", "key pair name")
	f.StringSliceVar(&spec.SecurityGroupIDs, "security-group", nil, "security group id (repeatable)")
	f.Int32Var(&spec.VolumeSize, "volume-size", ec2.DefaultVolumeSize, "root volume size in GiB")
	f.BoolVar(&spec.KeepVolume, "keep-volume", false, "keep the root volume after termination")
	_ = cmd.MarkFlagRequired("image")
	_ = cmd.MarkFlagRequired("name")
	return cmd
}

func newEC2SecurityGroupCommand(a *app) *cobra.Command {
	var description string
	cmd := &cobra.Command{
		Use:   "security-group <name>",
		Short: "Create a security group unless it exists, and print its id",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := a.ec2(cmd.Context())
			if err != nil {
				return err
			}
			id, err := m.EnsureSecurityGroup(cmd.Context(), args[0], description)
			if err != nil {
				return err
			}
			fmt.Fprintln(a.out, id)
			return nil
		},
	}
	cmd.Flags().StringVar(&description, "description", "", "group description (default the name)")
	return cmd
}

func newEC2AuthorizeCommand(a *app) *cobra.Command {
	var (
		protocol string
		port     int32
		cidr     string
	)
	cmd := &cobra.Command{
		Use:   "authorize <group-id>",
		Short: "Allow inbound traffic to a security group",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := a.ec2(cmd.Context())
			if err != nil {
				return err
			}
			return m.AuthorizeIngress(cmd.Context(), args[0], protocol, port, cidr)
		},
	}
	cmd.Flags().StringVar(&protocol, "protocol", "tcp", "ip protocol")
	cmd.Flags().Int32Var(&port, "port", 22, "port to open")
	cmd.Flags().StringVar(&cidr, "cidr", "0.0.0.0/0", "source address range")
	return cmd
}

func newEC2SetSecurityGroupsCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "set-security-groups <instance-id> <group-id>...",
		Short: "Replace the security groups of an instance",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := a.ec2(cmd.Context())
			if err != nil {
				return err
			}
			return m.SetSecurityGroups(cmd.Context(), args[0], args[1:]...)
		},
	}
}

func newEC2AttachRoleCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "attach-role <instance-id> <role>",
		Short: "Attach an IAM role to an instance through an instance profile",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := a.ec2(cmd.Context())
			if err != nil {
				return err
			}
			return m.AttachRole(cmd.Context(), args[0], args[1])
		},
	}
}
