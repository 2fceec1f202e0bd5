package chrome

import (
	"encoding/json"
	"fmt"
	"strings"
)

// call renders a function invocation with JSON encoded arguments.
func call(fn string, args ...any) (string, error) {
	encoded := make([]string, 0, len(args))
	for _, arg := range args {
		b, err := json.Marshal(arg)
		if err != nil {
			return "", fmt.Errorf("failed to encode script argument: %w", err)
		}
		encoded = append(encoded, string(b))
	}
	return fmt.Sprintf("(%s)(%s)", strings.TrimSpace(fn), strings.Join(encoded, ", ")), nil
}

// mustCall is call for arguments that always encode: strings, numbers and string slices.
func mustCall(fn string, args ...any) string {
	expr, err := call(fn, args...)
	if err != nil {
		panic(err)
	}
	return expr
}

const createContainerScript = `
function (id, width, height) {
	document.body.style.margin = '0';
	const el = document.createElement('div');
	el.id = id;
	el.style.cssText = 'position:absolute;top:0;left:-' + (width + 1000) + 'px;' +
		'width:' + width + 'px;min-height:' + height + 'px;background:#ffffff;';
	document.body.appendChild(el);
	return document.body.contains(el);
}`

const attachedScript = `
function (id) {
	const el = document.getElementById(id);
	return el !== null && document.body.contains(el);
}`

// mountScript loads the stylesheets, sets the markup and re-creates every script element in
// document order so each one runs after the previous has loaded. Chart animations are disabled
// as soon as Chart.js is available.
const mountScript = `
async function (id, html, stylesheets, scripts) {
	const root = document.getElementById(id);
	if (root === null) {
		return false;
	}
	const settle = (el) => new Promise((resolve) => {
		el.addEventListener('load', resolve, { once: true });
		el.addEventListener('error', resolve, { once: true });
	});
	const quiet = () => {
		if (window.Chart && window.Chart.defaults) {
			window.Chart.defaults.animation = false;
		}
	};
	for (const href of stylesheets) {
		const link = document.createElement('link');
		link.rel = 'stylesheet';
		link.href = href;
		link.dataset.pdfOwner = id;
		const loaded = settle(link);
		document.head.appendChild(link);
		await loaded;
	}
	root.innerHTML = html;
	const pending = Array.from(root.querySelectorAll('script')).map((old) => ({ old, src: old.getAttribute('src'), text: old.textContent }));
	for (const src of scripts) {
		pending.push({ old: null, src, text: '' });
	}
	for (const item of pending) {
		const el = document.createElement('script');
		el.dataset.pdfOwner = id;
		let loaded = Promise.resolve();
		if (item.src) {
			el.src = item.src;
			loaded = settle(el);
		} else {
			el.textContent = item.text;
		}
		if (item.old !== null) {
			item.old.replaceWith(el);
		} else {
			root.appendChild(el);
		}
		await loaded;
		quiet();
	}
	return true;
}`

const nextFrameScript = `
function () {
	return new Promise((resolve) => requestAnimationFrame(() => resolve(true)));
}`

const fontsReadyScript = `
function () {
	return document.fonts.ready.then(() => true);
}`

const settleImagesScript = `
async function (id) {
	const root = document.getElementById(id);
	const result = { loaded: 0, failed: 0 };
	if (root === null) {
		return result;
	}
	await Promise.all(Array.from(root.querySelectorAll('img')).map((img) => new Promise((resolve) => {
		const done = (ok) => {
			if (ok) { result.loaded++; } else { result.failed++; }
			resolve();
		};
		if (img.complete) {
			done(img.naturalWidth > 0);
			return;
		}
		img.addEventListener('load', () => done(true), { once: true });
		img.addEventListener('error', () => done(false), { once: true });
	})));
	return result;
}`

const injectStylesScript = `
function (id, css) {
	const style = document.createElement('style');
	style.id = id + '-print';
	style.dataset.pdfOwner = id;
	style.textContent = css;
	document.head.appendChild(style);
	return true;
}`

const boundariesScript = `
function (id, selector) {
	const root = document.getElementById(id);
	if (root === null) {
		return { missing: true, items: [] };
	}
	const origin = root.getBoundingClientRect();
	const items = Array.from(root.querySelectorAll(selector)).map((el) => {
		const rect = el.getBoundingClientRect();
		return { top: rect.top - origin.top, height: rect.height };
	});
	return { missing: false, items };
}`

const segmentsScript = `
function (id) {
	const root = document.getElementById(id);
	if (root === null) {
		return { missing: true, items: [] };
	}
	const origin = root.getBoundingClientRect();
	const items = Array.from(root.querySelectorAll('[data-pdf-segment]')).map((el) => {
		const rect = el.getBoundingClientRect();
		return {
			index: parseInt(el.getAttribute('data-pdf-segment'), 10) || 0,
			top: rect.top - origin.top,
			bottom: rect.bottom - origin.top,
		};
	});
	return { missing: false, items };
}`

const cssWidthScript = `
function (id) {
	const root = document.getElementById(id);
	return root === null ? -1 : root.getBoundingClientRect().width;
}`

const suppressConsoleScript = `
function (id) {
	window.__pdfConsoleWarn = window.__pdfConsoleWarn || {};
	window.__pdfConsoleWarn[id] = console.warn;
	console.warn = function () {};
	return true;
}`

const restoreConsoleScript = `
function (id) {
	const saved = window.__pdfConsoleWarn && window.__pdfConsoleWarn[id];
	if (saved) {
		console.warn = saved;
		delete window.__pdfConsoleWarn[id];
	}
	return true;
}`

// revealScript moves the container into the capture area and returns its clip rectangle.
const revealScript = `
function (id) {
	const root = document.getElementById(id);
	if (root === null) {
		return { missing: true };
	}
	root.dataset.pdfLeft = root.style.left;
	root.style.left = '0px';
	window.scrollTo(0, 0);
	const rect = root.getBoundingClientRect();
	return {
		missing: false,
		x: rect.left + window.scrollX,
		y: rect.top + window.scrollY,
		width: Math.ceil(rect.width),
		height: Math.ceil(Math.max(rect.height, root.scrollHeight)),
	};
}`

const concealScript = `
function (id) {
	const root = document.getElementById(id);
	if (root !== null && root.dataset.pdfLeft !== undefined) {
		root.style.left = root.dataset.pdfLeft;
		delete root.dataset.pdfLeft;
	}
	return true;
}`

const teardownScript = `
function (id) {
	document.querySelectorAll('[data-pdf-owner="' + id + '"]').forEach((el) => el.remove());
	const root = document.getElementById(id);
	if (root !== null) {
		root.innerHTML = '';
		root.remove();
	}
	return true;
}`
