package k8s

// Config holds configuration for the Kubernetes API connection.
type Config struct {
	// Namespace is the namespace bot instances are created in.
	Namespace string `mapstructure:"namespace" default:"coingro"`
	// InCluster selects in-cluster service account credentials. When false,
	// Kubeconfig is used instead (useful for local development).
	InCluster bool `mapstructure:"in_cluster" default:"true"`
	// Kubeconfig is the path to a kubeconfig file, used when InCluster is
	// false. Empty falls back to the client-go default loading rules.
	Kubeconfig string `mapstructure:"kubeconfig" default:""`
}
