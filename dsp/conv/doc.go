// Package conv provides linear convolution of real traces with real or
// complex kernels.
//
// Short kernels run in the time domain; long ones are multiplied in the
// frequency domain on a 5-smooth FFT length. The output modes follow the
// usual full/same/valid convention, with ModeSame centred on the full
// result so that a symmetric kernel introduces no delay.
package conv
