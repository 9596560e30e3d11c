/*
go-annotrack produces bounding box annotations of people across the frames of
a video.  Objects are seeded either by a face detector or by the operator
drawing boxes, followed frame to frame by single object trackers, and the
resulting tracking sessions are exported as CVAT style XML tracks.

The core of the package is the tracking session state machine in Annotator.
Tracker and Detector backends are plugged in through the capability
interfaces defined here, see the tracker and detect subpackages for the
implementations and cmd/annotrack for the command line program.
*/
package annotrack
