package rpc

import (
	jsoniter "github.com/json-iterator/go"

	"statementnet_demo/libs/metric"
	"statementnet_demo/router"
)

var (
	env  *Environment
	json = jsoniter.ConfigCompatibleWithStandardLibrary
)

func SetEnvironment(e *Environment) {
	env = e
}

type Environment struct {
	Router *router.Router

	MetricSet *metric.MetricSet
}
