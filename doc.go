/*
go-bodycrop prepares per frame samples for body reconstruction models.  Each
frame's RGB image, segmentation mask, 2D landmarks, body model vertices and
camera intrinsics are cropped to a single window derived from the projected
body geometry and resized to a fixed square size.

The same affine crop-resize transform is applied to every modality, to the
pixel grid of the image and mask, to the landmark coordinates and to the
camera intrinsics, so that projecting the cropped vertices through the
cropped intrinsics lands on the cropped landmarks and image.

See the export command in the example subdirectory for usage.
*/
package bodycrop
