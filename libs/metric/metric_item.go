package metric

// MetricItem is one component's metric snapshot source.
type MetricItem interface {
	JSONString() string
}

type mockMetricItem struct {
	name string
}

func (mock *mockMetricItem) JSONString() string {
	return mock.name
}
