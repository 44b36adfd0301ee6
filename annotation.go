package boxcluster

// Annotation is everything a renderer may draw onto the photo of a unit
type Annotation struct {
	// Chosen holds the representative box of every cluster
	Chosen []Detection
	// Detections are the raw boxes the representatives were chosen from
	Detections []Detection
	// Labels holds the cluster id of each raw detection
	Labels []int
}

// Renderer draws an annotation onto the photo at src and saves it to dst
type Renderer interface {
	Render(src, dst string, ann Annotation) error
}
