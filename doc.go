/*
go-boxcluster consolidates redundant object detection bounding boxes into a
single representative box per physical object.

A detector typically reports the same object several times with slightly
shifted boxes and differing confidence scores.  The boxes are projected to
2D points and clustered with k-means for every candidate cluster count up to
a caller supplied maximum.  The "elbow" of the resulting compactness curve
decides how many objects are present, then each cluster is reduced to its
most confident member.

The clustering primitive is abstracted behind the Clusterer interface.  A
pure Go implementation lives in the kmeans subpackage and an OpenCV backed
one in kmeans/cvkmeans.  Reading and writing box files is handled by boxio,
drawing results by render, and running a whole directory of photos by batch.

See the command line tool in the example subdirectory.
*/
package boxcluster
