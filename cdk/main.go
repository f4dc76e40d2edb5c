package main

import (
	"os"

	"github.com/aws/aws-cdk-go/awscdk/v2"
	"github.com/aws/aws-cdk-go/awscdk/v2/awsapigateway"
	"github.com/aws/aws-cdk-go/awscdk/v2/awslambda"
	"github.com/aws/constructs-go/constructs/v10"
	"github.com/aws/jsii-runtime-go"
)

type CourtsideStackProps struct {
	awscdk.StackProps
}

// NewCourtsideStack deploys the organiser API as a single Lambda behind API
// Gateway. Snapshots and shared queues live in the Postgres databases named
// by the DSNs taken from the deploying environment.
func NewCourtsideStack(scope constructs.Construct, id string, props *CourtsideStackProps) awscdk.Stack {
	var stackProps awscdk.StackProps
	if props != nil {
		stackProps = props.StackProps
	}

	stack := awscdk.NewStack(scope, &id, &stackProps)

	lambdaFn := awslambda.NewFunction(stack, jsii.String("CourtsideApi"), &awslambda.FunctionProps{
		Runtime: awslambda.Runtime_PROVIDED_AL2023(),
		Handler: jsii.String("bootstrap"),
		Code:    awslambda.Code_FromAsset(jsii.String("../"), nil),
		Timeout: awscdk.Duration_Seconds(jsii.Number(30)),
		Environment: &map[string]*string{
			"APP":            jsii.String("prod"),
			"POSTGRES_DSN":   jsii.String(os.Getenv("POSTGRES_DSN")),
			"MIRROR_DSN":     jsii.String(os.Getenv("MIRROR_DSN")),
			"SHARE_BASE_URL": jsii.String(os.Getenv("SHARE_BASE_URL")),
			"KAFKA_BROKERS":  jsii.String(os.Getenv("KAFKA_BROKERS")),
			"LOG_LEVEL":      jsii.String("info"),
		},
	})

	api := awsapigateway.NewLambdaRestApi(stack, jsii.String("CourtsideApiGateway"), &awsapigateway.LambdaRestApiProps{
		Handler: lambdaFn,
	})

	awscdk.NewCfnOutput(stack, jsii.String("ApiUrl"), &awscdk.CfnOutputProps{Value: api.Url()})

	return stack
}

func main() {
	app := awscdk.NewApp(nil)
	NewCourtsideStack(app, "CourtsideStack", &CourtsideStackProps{})
	app.Synth(nil)
}
