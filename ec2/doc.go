// Package ec2 manages the lifecycle of EC2 instances.
//
// The Manager wraps the AWS SDK v2 EC2 and IAM clients behind a narrow call
// shape: list and describe instances, request state transitions, create key
// pairs, wait for an instance to reach a state, and the supporting launch,
// security group and instance profile operations. Every remote call is
// attempted exactly once and every failure is returned as an *errors.Error.
//
// State transitions return the API's immediate acknowledgment and never block
// until the transition completes. Use WaitForState to poll for it.
//
// Example usage:
//
//	cfg, err := awsconfig.Load(ctx, awsconfig.WithRegion("eu-west-1"))
//	if err != nil {
//	    return err
//	}
//	mgr, err := ec2.New(cfg)
//	if err != nil {
//	    return err
//	}
//	if _, err := mgr.StartInstance(ctx, "i-0123456789abcdef0"); err != nil {
//	    return err
//	}
//	err = mgr.WaitForState(ctx, "i-0123456789abcdef0", ec2.StateRunning, 5*time.Minute)
package ec2
