package chesscom

// Every script returns its result serialized as JSON, which is decoded on
// the Go side. Hidden elements belong to previous games and are ignored.

const visibleJS = `const visible = el => !!(el && (el.offsetWidth || el.offsetHeight || el.getClientRects().length));`

const movesJS = `() => {
	` + visibleJS + `
	let container = null;
	for (const cls of ['play-controller-scrollable', 'mode-swap-move-list-wrapper-component']) {
		for (const el of document.getElementsByClassName(cls)) {
			if (visible(el)) { container = el; break; }
		}
		if (container) break;
	}
	if (!container) return JSON.stringify(null);

	const nodes = [];
	for (const el of container.querySelectorAll('div.node[data-node]')) {
		if (!visible(el)) continue;
		const figurine = el.querySelector('[data-figurine]');
		const piece = el.querySelector("span.piece-wrapper, span[class*='piece']");
		nodes.push({
			id: el.getAttribute('data-node') || '',
			class: String(el.className || ''),
			text: (el.innerText || '').trim(),
			figurine: figurine ? (figurine.getAttribute('data-figurine') || '') : '',
			pieceClass: piece ? String(piece.className || '') : '',
		});
	}
	return JSON.stringify(nodes);
}`

const boardJS = `() => {
	` + visibleJS + `
	const className = el => typeof el.className === 'string' ? el.className : (el.getAttribute('class') || '');
	for (const id of ['board-single', 'board-play-computer', 'board-vs-personality']) {
		const board = document.getElementById(id);
		if (!visible(board)) continue;

		const rect = board.getBoundingClientRect();
		const coords = [];
		for (const svg of board.querySelectorAll('svg')) {
			if (className(svg) !== 'coordinates') continue;
			for (const label of svg.querySelectorAll('*')) {
				const x = parseFloat(label.getAttribute('x'));
				const y = parseFloat(label.getAttribute('y'));
				coords.push({
					x: isNaN(x) ? null : x,
					y: isNaN(y) ? null : y,
					text: (label.textContent || '').trim(),
				});
			}
			break;
		}

		const pieces = Array.from(board.querySelectorAll('.piece')).map(className);
		return JSON.stringify({id, x: rect.left, y: rect.top, width: rect.width, height: rect.height, coords, pieces});
	}
	return JSON.stringify(null);
}`

const gameOverJS = `() => {
	` + visibleJS + `
	for (const button of document.querySelectorAll('button')) {
		if (!visible(button)) continue;
		const text = (button.innerText || '').toLowerCase();
		if ((text.includes('new') && (text.includes('min') || text.includes('game'))) || text.includes('rematch')) {
			return JSON.stringify(true);
		}
	}

	const words = ['won', 'win', 'lost', 'lose', 'draw', 'checkmate', 'resignation', 'timeout', 'abandoned'];
	const headers = document.querySelectorAll(
		".game-over-header-component, .game-over-header-content, [class*='game-over'] h3, [class*='game-over'] h2");
	for (const header of headers) {
		if (!visible(header)) continue;
		const text = (header.innerText || '').toLowerCase();
		if (words.some(word => text.includes(word))) return JSON.stringify(true);
	}

	const buttons = document.getElementsByClassName('game-over-buttons-component')[0];
	return JSON.stringify(visible(buttons));
}`

const newGameJS = `() => {
	` + visibleJS + `
	const isNew = button => visible(button) && (button.innerText || '').toLowerCase().includes('new');

	let target = Array.from(document.querySelectorAll('button')).find(button =>
		isNew(button) && !(button.innerText || '').toLowerCase().includes('rematch'));

	for (const cls of ['board-modal-container', 'game-over-buttons-component']) {
		if (target) break;
		const container = document.getElementsByClassName(cls)[0];
		if (container && visible(container)) {
			target = Array.from(container.querySelectorAll('button')).find(isNew);
		}
	}

	if (!target) {
		target = document.querySelector("button[aria-label*='New'], button[aria-label*='new']");
	}

	if (!target) return JSON.stringify(false);
	target.click();
	return JSON.stringify(true);
}`

const modalJS = `() => {
	` + visibleJS + `
	return JSON.stringify(visible(document.getElementsByClassName('board-modal-container')[0]));
}`
